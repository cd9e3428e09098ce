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
	"path"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// DiffMetrics is the typed record pulled out of a candidate's unified
// diff.
type DiffMetrics struct {
	// FilesChanged lists every file path touched by the diff.
	FilesChanged []string `json:"files_changed"`

	// TestFilesChanged is the subset of FilesChanged classified as
	// test files by path pattern.
	TestFilesChanged []string `json:"test_files_changed"`

	// LinesAdded / LinesRemoved count content lines, excluding hunk
	// and file headers.
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`

	// TestFuncsAdded counts added lines that open a test function.
	TestFuncsAdded int `json:"test_funcs_added"`

	// SkipDirectivesAdded counts added lines carrying a skip or
	// xfail directive. A candidate silencing tests instead of fixing
	// them is a risk signal.
	SkipDirectivesAdded int `json:"skip_directives_added"`

	// TestAdded is true when the diff touched a test file or added a
	// test function line.
	TestAdded bool `json:"test_added"`
}

// testFileFragments classify a path as a test file when any fragment
// matches. Covers Go, Python, and JS/TS ecosystem conventions.
var testFileFragments = []string{
	"_test.go",
	"_test.py",
	".test.js",
	".test.ts",
	".test.jsx",
	".test.tsx",
	".spec.js",
	".spec.ts",
}

// testFuncPrefixes mark an added line as opening a test function.
var testFuncPrefixes = []string{
	"func Test",
	"func Benchmark",
	"def test_",
	"async def test_",
	"it(",
	"it.each(",
	"test(",
	"test.each(",
}

// skipDirectiveFragments mark an added line as disabling a test.
var skipDirectiveFragments = []string{
	"t.Skip(",
	"t.SkipNow(",
	"@pytest.mark.skip",
	"@pytest.mark.xfail",
	"@unittest.skip",
	"pytest.skip(",
	"it.skip(",
	"test.skip(",
	"xit(",
	"xdescribe(",
}

// ExtractDiff parses a unified diff into DiffMetrics.
//
// Description:
//
//	Uses go-diff for structured parsing. When the content is not a
//	well-formed multi-file diff the extractor degrades to a raw
//	line-prefix scan so add/remove counts survive, and logs the
//	anomaly. It never returns an error.
//
// Inputs:
//
//	content - Raw diff text. Empty input yields zero metrics.
//	logger - Destination for anomaly logs. Must not be nil.
//
// Outputs:
//
//	DiffMetrics - Always a usable value.
//
// Thread Safety: Pure function, safe for concurrent use.
func ExtractDiff(content string, logger *logging.Logger) DiffMetrics {
	m := DiffMetrics{
		FilesChanged:     []string{},
		TestFilesChanged: []string{},
	}
	if strings.TrimSpace(content) == "" {
		return m
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(content))
	if err != nil || len(fileDiffs) == 0 {
		telemetry.ExtractorAnomalies.WithLabelValues("diff").Inc()
		logger.Warn("diff did not parse as a multi-file diff, falling back to line scan",
			"error", err)
		scanRawDiff(content, &m)
		m.TestAdded = m.TestFuncsAdded > 0 || len(m.TestFilesChanged) > 0
		return m
	}

	for _, fd := range fileDiffs {
		name := diffFileName(fd)
		if name != "" {
			m.FilesChanged = append(m.FilesChanged, name)
			if isTestFile(name) {
				m.TestFilesChanged = append(m.TestFilesChanged, name)
			}
		}
		for _, hunk := range fd.Hunks {
			for _, line := range strings.Split(string(hunk.Body), "\n") {
				classifyDiffLine(line, &m)
			}
		}
	}

	m.TestAdded = m.TestFuncsAdded > 0 || len(m.TestFilesChanged) > 0
	return m
}

// diffFileName picks the post-image name, falling back to the
// pre-image for deletions. Strips the conventional a/ b/ prefixes.
func diffFileName(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "a/")
	name = strings.TrimPrefix(name, "b/")
	if name == "/dev/null" {
		return ""
	}
	return name
}

// classifyDiffLine updates counts for one hunk body line.
func classifyDiffLine(line string, m *DiffMetrics) {
	switch {
	case strings.HasPrefix(line, "+"):
		m.LinesAdded++
		added := strings.TrimSpace(line[1:])
		if hasAnyPrefix(added, testFuncPrefixes) {
			m.TestFuncsAdded++
		}
		if containsAny(added, skipDirectiveFragments) {
			m.SkipDirectivesAdded++
		}
	case strings.HasPrefix(line, "-"):
		m.LinesRemoved++
	}
}

// scanRawDiff is the degraded path for content go-diff rejects.
// It recognizes `+++ b/` file headers and bare +/- content lines.
func scanRawDiff(content string, m *DiffMetrics) {
	seen := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "+++ "))
			name = strings.TrimPrefix(name, "b/")
			if name != "" && name != "/dev/null" && !seen[name] {
				seen[name] = true
				m.FilesChanged = append(m.FilesChanged, name)
				if isTestFile(name) {
					m.TestFilesChanged = append(m.TestFilesChanged, name)
				}
			}
		case strings.HasPrefix(line, "---"):
			// pre-image header, not a removal
		case strings.HasPrefix(line, "+"):
			classifyDiffLine(line, m)
		case strings.HasPrefix(line, "-"):
			m.LinesRemoved++
		}
	}
}

// isTestFile classifies a path as a test file.
func isTestFile(p string) bool {
	lower := strings.ToLower(p)
	for _, frag := range testFileFragments {
		if strings.HasSuffix(lower, frag) {
			return true
		}
	}
	base := path.Base(lower)
	if strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py") {
		return true
	}
	for _, dir := range strings.Split(path.Dir(lower), "/") {
		if dir == "test" || dir == "tests" || dir == "__tests__" {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
