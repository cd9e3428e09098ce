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

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// MinEvidenceQuoteLength is the citation gate: an LLM tag must carry
// a verbatim quote of at least this many characters before any rule
// may consume it.
const MinEvidenceQuoteLength = 10

// maxStoredQuoteLength truncates quotes inside evidence refs so the
// audit trail stays bounded.
const maxStoredQuoteLength = 160

// Tag is an LLM-derived annotation supplied by the tagging
// collaborator. Tags are advisory input; they never support a verdict
// without passing the citation gate.
type Tag struct {
	// Name identifies what the tag asserts (e.g. "reasoning_sound").
	Name string `json:"tag"`

	// Confidence is the model's self-reported confidence in [0,1].
	// Note that confidence never substitutes for a quote.
	Confidence float64 `json:"confidence"`

	// EvidenceQuote is the verbatim excerpt that grounds the tag.
	EvidenceQuote string `json:"evidence_quote"`

	// StartChar/EndChar optionally locate the quote in the source.
	StartChar *int `json:"start_char,omitempty"`
	EndChar   *int `json:"end_char,omitempty"`
}

// Valid applies the citation gate to a single tag: the evidence quote
// must be non-empty and at least MinEvidenceQuoteLength characters
// after trimming whitespace.
func (t Tag) Valid() bool {
	return len(strings.TrimSpace(t.EvidenceQuote)) >= MinEvidenceQuoteLength
}

// GateTags discards every tag that fails the citation gate, logging
// and counting the discards. Rules must only ever see the returned
// slice.
func GateTags(tags []Tag, logger *logging.Logger) []Tag {
	valid := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if !tag.Valid() {
			telemetry.TagsDiscarded.Inc()
			logger.Warn("discarding LLM tag with insufficient evidence quote",
				"tag", tag.Name,
				"quote_length", len(strings.TrimSpace(tag.EvidenceQuote)))
			continue
		}
		valid = append(valid, tag)
	}
	return valid
}

// tagRef converts a gated tag into the evidence ref recorded on a
// proved result, truncating the quote for storage.
func tagRef(t Tag) EvidenceRef {
	quote := t.EvidenceQuote
	if len(quote) > maxStoredQuoteLength {
		quote = quote[:maxStoredQuoteLength]
	}
	return EvidenceRef{
		Type:  "llm_tag",
		ID:    t.Name,
		Field: "evidence_quote",
		Value: quote,
	}
}
