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
	"regexp"
	"strings"

	"github.com/AleutianAI/proofdesk/pkg/logging"
)

// minPromptFollowWords is the number of words that must follow a
// prompt keyword for the prompt to count as answered.
const minPromptFollowWords = 10

// minSectionChars is the minimum section body length for the
// section-existence path to count a prompt as answered.
const minSectionChars = 50

// Canonical writeup section names.
const (
	SectionRootCause      = "root_cause"
	SectionFixDescription = "fix_description"
	SectionTradeoffs      = "tradeoffs"
	SectionMonitoring     = "monitoring"
	SectionTesting        = "testing"
)

// RequiredPrompts are the writeup prompts every simulation asks the
// candidate to address. The communication rule requires all three.
var RequiredPrompts = []string{SectionRootCause, SectionTradeoffs, SectionMonitoring}

// WriteupMetrics is the typed record pulled out of the candidate's
// written explanation.
type WriteupMetrics struct {
	// Sections maps canonical section name to its body text.
	Sections map[string]string `json:"sections"`

	// WordCount is the total word count of the writeup.
	WordCount int `json:"word_count"`

	// PromptsAnswered counts how many of RequiredPrompts the
	// candidate addressed.
	PromptsAnswered int `json:"prompts_answered"`

	// Presence flags, by section or keyword fallback.
	HasRootCause  bool `json:"has_root_cause"`
	HasTradeoffs  bool `json:"has_tradeoffs"`
	HasMonitoring bool `json:"has_monitoring"`
}

// markdownHeaderRe matches ATX markdown headers.
var markdownHeaderRe = regexp.MustCompile(`(?m)^#{1,6}\s*(.+?)\s*$`)

// sectionAliases maps canonical section names to header fragments.
// First canonical match wins for a given header.
var sectionAliases = []struct {
	canonical string
	fragments []string
}{
	{SectionRootCause, []string{"root cause", "cause", "diagnosis", "what went wrong", "why it happened"}},
	{SectionFixDescription, []string{"fix", "solution", "change", "approach", "what i did"}},
	{SectionTradeoffs, []string{"trade-off", "tradeoff", "alternative", "limitation"}},
	{SectionMonitoring, []string{"monitor", "observability", "alert", "metric"}},
	{SectionTesting, []string{"test", "verification", "validation"}},
}

// promptKeywords locate prompt answers in unstructured prose when the
// candidate did not use headers.
var promptKeywords = map[string][]string{
	SectionRootCause:  {"root cause", "because", "caused by", "the bug was"},
	SectionTradeoffs:  {"trade-off", "tradeoff", "alternative", "instead of", "downside"},
	SectionMonitoring: {"monitor", "alert", "metric", "dashboard", "observability"},
}

// ExtractWriteup parses the candidate's written explanation into
// WriteupMetrics.
//
// Description:
//
//	Splits the text into canonical sections by markdown header
//	matching, then determines per-prompt answers: a prompt counts as
//	answered when its keyword appears with at least 10 following
//	words, or when its canonical section exists with more than 50
//	characters of content. Never returns an error; empty input
//	degrades to zero metrics.
//
// Thread Safety: Pure function, safe for concurrent use.
func ExtractWriteup(content string, logger *logging.Logger) WriteupMetrics {
	m := WriteupMetrics{Sections: map[string]string{}}
	if strings.TrimSpace(content) == "" {
		return m
	}

	m.WordCount = len(strings.Fields(content))
	m.Sections = splitSections(content)

	for _, prompt := range RequiredPrompts {
		if promptAnswered(prompt, content, m.Sections) {
			m.PromptsAnswered++
			switch prompt {
			case SectionRootCause:
				m.HasRootCause = true
			case SectionTradeoffs:
				m.HasTradeoffs = true
			case SectionMonitoring:
				m.HasMonitoring = true
			}
		}
	}

	logger.Debug("writeup extracted",
		"sections", len(m.Sections),
		"prompts_answered", m.PromptsAnswered,
		"words", m.WordCount)
	return m
}

// splitSections maps canonical section names to the text between a
// matching header and the next header. The first header matching a
// canonical name wins.
func splitSections(content string) map[string]string {
	sections := map[string]string{}

	headers := markdownHeaderRe.FindAllStringSubmatchIndex(content, -1)
	for i, loc := range headers {
		title := strings.ToLower(content[loc[2]:loc[3]])
		canonical := canonicalSection(title)
		if canonical == "" {
			continue
		}

		bodyStart := loc[1]
		bodyEnd := len(content)
		if i+1 < len(headers) {
			bodyEnd = headers[i+1][0]
		}
		body := strings.TrimSpace(content[bodyStart:bodyEnd])

		if _, exists := sections[canonical]; !exists {
			sections[canonical] = body
		}
	}
	return sections
}

// canonicalSection maps a lowercase header title to a canonical
// section name, or "" when no alias matches.
func canonicalSection(title string) string {
	for _, alias := range sectionAliases {
		for _, frag := range alias.fragments {
			if strings.Contains(title, frag) {
				return alias.canonical
			}
		}
	}
	return ""
}

// promptAnswered applies the section-or-keyword policy for one prompt.
func promptAnswered(prompt, content string, sections map[string]string) bool {
	if body, ok := sections[prompt]; ok && len(body) > minSectionChars {
		return true
	}

	lower := strings.ToLower(content)
	for _, keyword := range promptKeywords[prompt] {
		idx := strings.Index(lower, keyword)
		if idx < 0 {
			continue
		}
		following := strings.Fields(content[idx+len(keyword):])
		if len(following) >= minPromptFollowWords {
			return true
		}
	}
	return false
}
