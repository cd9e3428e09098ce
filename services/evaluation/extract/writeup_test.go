// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/proofdesk/pkg/logging"
)

const fullWriteup = `# Root Cause

The pagination handler recomputed the offset from the page size on every
request, so deleting rows between requests skipped records entirely.

# Fix

Switched to keyset pagination anchored on the last-seen primary key.

# Trade-offs

Keyset pagination cannot jump to an arbitrary page number; for this API
that capability was unused, so the trade-off is acceptable for now.

# Monitoring

Added a counter for empty-page responses and an alert when the rate
exceeds one percent of list requests over five minutes.
`

func TestExtractWriteupAllPrompts(t *testing.T) {
	m := ExtractWriteup(fullWriteup, logging.Discard())

	assert.Equal(t, 3, m.PromptsAnswered)
	assert.True(t, m.HasRootCause)
	assert.True(t, m.HasTradeoffs)
	assert.True(t, m.HasMonitoring)
	assert.Contains(t, m.Sections, SectionRootCause)
	assert.Contains(t, m.Sections, SectionFixDescription)
	assert.Contains(t, m.Sections, SectionTradeoffs)
	assert.Contains(t, m.Sections, SectionMonitoring)
	assert.Greater(t, m.WordCount, 50)
}

func TestExtractWriteupTwoPrompts(t *testing.T) {
	content := `# Root Cause

The cache key omitted the tenant id, so responses leaked across tenants
whenever two tenants requested the same resource path concurrently.

# Trade-offs

Adding the tenant id to the key shrinks the effective cache hit rate,
which we accepted rather than risking another cross-tenant leak.
`
	m := ExtractWriteup(content, logging.Discard())

	assert.Equal(t, 2, m.PromptsAnswered)
	assert.True(t, m.HasRootCause)
	assert.True(t, m.HasTradeoffs)
	assert.False(t, m.HasMonitoring)
}

// Prompts can be answered in unstructured prose via keyword matching
// when the candidate skipped headers.
func TestExtractWriteupKeywordFallback(t *testing.T) {
	content := `The root cause was an off-by-one in the retry loop that dropped the
final attempt, and I would monitor the retry exhaustion counter going
forward to catch any regression in this area before users notice it.`

	m := ExtractWriteup(content, logging.Discard())

	assert.True(t, m.HasRootCause)
	assert.True(t, m.HasMonitoring)
}

// A keyword with fewer than 10 following words is not an answer.
func TestExtractWriteupShortKeywordTail(t *testing.T) {
	m := ExtractWriteup("The root cause was a bug.", logging.Discard())
	assert.False(t, m.HasRootCause)
	assert.Zero(t, m.PromptsAnswered)
}

// A matching section with a body at or under 50 characters does not
// count through the section path.
func TestExtractWriteupThinSection(t *testing.T) {
	m := ExtractWriteup("# Monitoring\n\nnone yet\n", logging.Discard())
	assert.False(t, m.HasMonitoring)
}

func TestExtractWriteupEmpty(t *testing.T) {
	m := ExtractWriteup("", logging.Discard())
	assert.Zero(t, m.WordCount)
	assert.Zero(t, m.PromptsAnswered)
	assert.Empty(t, m.Sections)
}

func TestCanonicalSection(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"root cause analysis", SectionRootCause},
		{"what went wrong", SectionRootCause},
		{"the fix", SectionFixDescription},
		{"trade-offs considered", SectionTradeoffs},
		{"monitoring & alerts", SectionMonitoring},
		{"testing strategy", SectionTesting},
		{"appendix", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonicalSection(tt.title), tt.title)
	}
}
