// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package artifact

// MetricsBundle is the merged, normalized view of everything the
// extractors pulled out of one simulation run's artifacts.
//
// Optional numeric fields are pointers: nil means the evidence kind
// was never produced (no test log, no coverage report), which is
// different from a measured zero. Rules and the hypothesis generator
// branch on presence, so the distinction is load-bearing.
//
// A bundle is built once per run by extract.BuildBundle and is
// read-only afterward.
type MetricsBundle struct {
	// SimulationRunID keys the bundle to its run.
	SimulationRunID string `json:"simulation_run_id"`

	// TestsPassed is the count of passing tests, nil if no test log
	// was parsed.
	TestsPassed *int `json:"tests_passed,omitempty"`

	// TestsFailed is the count of failing tests, nil if unknown.
	TestsFailed *int `json:"tests_failed,omitempty"`

	// TestsSkipped is the count of skipped tests, nil if unknown.
	TestsSkipped *int `json:"tests_skipped,omitempty"`

	// TestErrors is the count of errored tests, nil if unknown.
	TestErrors *int `json:"test_errors,omitempty"`

	// CoveragePercent is line coverage 0-100, nil if no report.
	CoveragePercent *float64 `json:"coverage_percent,omitempty"`

	// LinesAdded / LinesRemoved come from the diff.
	LinesAdded   int `json:"lines_added"`
	LinesRemoved int `json:"lines_removed"`

	// TestAdded is true when the diff touched a test file or added a
	// test function.
	TestAdded bool `json:"test_added"`

	// WriteupWordCount is the total word count of the writeup, 0 if
	// no writeup was submitted.
	WriteupWordCount int `json:"writeup_word_count"`

	// TimeToGreenSeconds is the wall-clock time until the suite first
	// went green, nil if the sandbox did not report it.
	TimeToGreenSeconds *float64 `json:"time_to_green_seconds,omitempty"`

	// Raw is the open-ended escape hatch for rule access to
	// non-standard extractor fields. Keys are extractor-qualified
	// (e.g. "diff.test_files_changed"). Never nil after BuildBundle.
	Raw map[string]any `json:"raw,omitempty"`
}

// HasTestResults reports whether a test log was parsed for this run.
func (m *MetricsBundle) HasTestResults() bool {
	return m.TestsPassed != nil
}

// HasCoverage reports whether a coverage report was parsed.
func (m *MetricsBundle) HasCoverage() bool {
	return m.CoveragePercent != nil
}

// AllTestsGreen reports whether a test log was parsed and recorded
// zero failures and zero errors.
func (m *MetricsBundle) AllTestsGreen() bool {
	if m.TestsFailed == nil {
		return false
	}
	errs := 0
	if m.TestErrors != nil {
		errs = *m.TestErrors
	}
	return *m.TestsFailed == 0 && errs == 0
}

// IntPtr returns a pointer to v. Convenience for bundle construction
// and table tests.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
