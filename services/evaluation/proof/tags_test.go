// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package proof

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/proofdesk/pkg/logging"
)

func TestTagValid(t *testing.T) {
	tests := []struct {
		name  string
		quote string
		want  bool
	}{
		{"long quote", "the retry loop dropped the final attempt", true},
		{"exactly ten chars", "ten chars!", true},
		{"nine chars", "ninechars", false},
		{"empty", "", false},
		{"whitespace only", "          ", false},
		{"padded short quote", "  short  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := Tag{Name: "sound_reasoning", Confidence: 0.99, EvidenceQuote: tt.quote}
			assert.Equal(t, tt.want, tag.Valid())
		})
	}
}

// High confidence never substitutes for a citation.
func TestGateTagsIgnoresConfidence(t *testing.T) {
	tags := []Tag{
		{Name: "clear_structure", Confidence: 1.0, EvidenceQuote: "short"},
		{Name: "sound_reasoning", Confidence: 0.1, EvidenceQuote: "a quote of sufficient length"},
	}

	gated := GateTags(tags, logging.Discard())

	assert.Len(t, gated, 1)
	assert.Equal(t, "sound_reasoning", gated[0].Name)
}

func TestGateTagsEmptyInput(t *testing.T) {
	assert.Empty(t, GateTags(nil, logging.Discard()))
	assert.Empty(t, GateTags([]Tag{}, logging.Discard()))
}

func TestTagRefTruncatesQuote(t *testing.T) {
	long := strings.Repeat("x", maxStoredQuoteLength+50)
	ref := tagRef(Tag{Name: "clear_structure", EvidenceQuote: long})

	assert.Equal(t, "llm_tag", ref.Type)
	assert.Equal(t, "clear_structure", ref.ID)
	assert.Len(t, ref.Value, maxStoredQuoteLength)
}
