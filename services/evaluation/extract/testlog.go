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
	"strconv"
	"strings"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// maxErrorSnippets caps how many error lines we keep from a test log.
const maxErrorSnippets = 10

// maxSnippetLength truncates individual error snippets for storage.
const maxSnippetLength = 200

// TestLogMetrics is the typed record pulled out of raw test runner
// output.
type TestLogMetrics struct {
	// Format is the recognized log format: "pytest", "jest",
	// "generic", or "unknown".
	Format string `json:"format"`

	// Parsed is true when any summary format matched. When false all
	// counts are zero and must not be treated as a green run.
	Parsed bool `json:"parsed"`

	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`

	// FailingTests lists the names of failing tests, in log order.
	FailingTests []string `json:"failing_tests"`

	// DurationSeconds is the reported suite duration, 0 if absent.
	DurationSeconds float64 `json:"duration_seconds"`

	// ErrorSnippets holds up to 10 truncated error lines for the
	// hypothesis generator and interview questions.
	ErrorSnippets []string `json:"error_snippets"`
}

var (
	// pytest: "====== 5 passed, 2 failed, 1 skipped in 3.24s ======"
	pytestSummaryRe  = regexp.MustCompile(`(?m)^=+.*\bin\s+([0-9.]+)s.*=+\s*$`)
	pytestPassedRe   = regexp.MustCompile(`(\d+) passed`)
	pytestFailedRe   = regexp.MustCompile(`(\d+) failed`)
	pytestSkippedRe  = regexp.MustCompile(`(\d+) skipped`)
	pytestErrorRe    = regexp.MustCompile(`(\d+) error`)
	pytestFailNameRe = regexp.MustCompile(`(?m)^FAILED\s+(\S+)`)

	// jest: "Tests:       1 failed, 5 passed, 6 total"
	jestSummaryRe  = regexp.MustCompile(`(?m)^Tests:\s+(.+)$`)
	jestDurationRe = regexp.MustCompile(`(?m)^Time:\s+([0-9.]+)\s*s`)
	jestFailNameRe = regexp.MustCompile(`(?m)^\s*[✕✗]\s+(.+?)(?:\s+\(\d+\s*ms\))?\s*$`)

	// generic fallback: any "<n> tests" occurrence
	genericCountRe = regexp.MustCompile(`(\d+)\s+tests?\b`)

	errorLineRe = regexp.MustCompile(`(?i)(error|exception|traceback|assertion|panic)`)
)

// ExtractTestLog parses test runner output into TestLogMetrics.
//
// Description:
//
//	Tries the pytest summary format first, then Jest, then a generic
//	heuristic that only needs "passed"/"failed" substrings and a
//	"<n> tests" count. Unrecognized content degrades to zero counts
//	with Format "unknown"; it never returns an error.
//
// Thread Safety: Pure function, safe for concurrent use.
func ExtractTestLog(content string, logger *logging.Logger) TestLogMetrics {
	m := TestLogMetrics{
		Format:       "unknown",
		FailingTests: []string{},
		ErrorSnippets: []string{},
	}
	if strings.TrimSpace(content) == "" {
		return m
	}

	switch {
	case parsePytest(content, &m):
		m.Format = "pytest"
		m.Parsed = true
	case parseJest(content, &m):
		m.Format = "jest"
		m.Parsed = true
	case parseGeneric(content, &m):
		m.Format = "generic"
		m.Parsed = true
	default:
		telemetry.ExtractorAnomalies.WithLabelValues("test_log").Inc()
		logger.Warn("unrecognized test log format", "bytes", len(content))
		return m
	}

	m.ErrorSnippets = collectErrorSnippets(content)
	return m
}

func parsePytest(content string, m *TestLogMetrics) bool {
	summary := pytestSummaryRe.FindStringSubmatch(content)
	if summary == nil {
		return false
	}
	m.DurationSeconds, _ = strconv.ParseFloat(summary[1], 64)
	m.Passed = firstCount(pytestPassedRe, content)
	m.Failed = firstCount(pytestFailedRe, content)
	m.Skipped = firstCount(pytestSkippedRe, content)
	m.Errors = firstCount(pytestErrorRe, content)

	for _, match := range pytestFailNameRe.FindAllStringSubmatch(content, -1) {
		m.FailingTests = append(m.FailingTests, match[1])
	}
	return true
}

func parseJest(content string, m *TestLogMetrics) bool {
	summary := jestSummaryRe.FindStringSubmatch(content)
	if summary == nil {
		return false
	}
	// The summary line is "<n> failed, <n> skipped, <n> passed, <n> total"
	// with absent categories omitted.
	for _, part := range strings.Split(summary[1], ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch fields[1] {
		case "passed":
			m.Passed = n
		case "failed":
			m.Failed = n
		case "skipped", "todo":
			m.Skipped = n
		}
	}
	if d := jestDurationRe.FindStringSubmatch(content); d != nil {
		m.DurationSeconds, _ = strconv.ParseFloat(d[1], 64)
	}
	for _, match := range jestFailNameRe.FindAllStringSubmatch(content, -1) {
		m.FailingTests = append(m.FailingTests, strings.TrimSpace(match[1]))
	}
	return true
}

// parseGeneric is the last-resort heuristic: the log mentions passing
// or failing and reports some test count.
func parseGeneric(content string, m *TestLogMetrics) bool {
	lower := strings.ToLower(content)
	hasPassed := strings.Contains(lower, "passed") || strings.Contains(lower, "pass")
	hasFailed := strings.Contains(lower, "failed") || strings.Contains(lower, "fail")
	count := genericCountRe.FindStringSubmatch(lower)
	if count == nil || (!hasPassed && !hasFailed) {
		return false
	}

	total, _ := strconv.Atoi(count[1])
	if hasFailed {
		// Cannot split pass/fail reliably; record the failure signal
		// without inventing a passing count.
		m.Failed = firstCountDefault(pytestFailedRe, lower, 1)
		m.Passed = total - m.Failed
		if m.Passed < 0 {
			m.Passed = 0
		}
	} else {
		m.Passed = total
	}
	return true
}

func firstCount(re *regexp.Regexp, s string) int {
	return firstCountDefault(re, s, 0)
}

func firstCountDefault(re *regexp.Regexp, s string, def int) int {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return def
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return def
	}
	return n
}

// collectErrorSnippets keeps up to maxErrorSnippets truncated lines
// that look like error output.
func collectErrorSnippets(content string) []string {
	snippets := []string{}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !errorLineRe.MatchString(trimmed) {
			continue
		}
		if len(trimmed) > maxSnippetLength {
			trimmed = trimmed[:maxSnippetLength]
		}
		snippets = append(snippets, trimmed)
		if len(snippets) == maxErrorSnippets {
			break
		}
	}
	return snippets
}
