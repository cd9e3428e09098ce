// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extract turns raw simulation artifacts into typed metrics.
//
// Each extractor is a pure transform: artifact content in, typed
// metrics record out. Extractors never raise for malformed input;
// they degrade to zero metrics, log the anomaly, and count it in
// telemetry. BuildBundle merges the four records into the normalized
// MetricsBundle the rest of the pipeline consumes.
package extract

import (
	"strconv"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
)

// Extracted holds the typed per-artifact records for one run. Fields
// are nil when the corresponding artifact was absent.
type Extracted struct {
	Diff     *DiffMetrics
	TestLog  *TestLogMetrics
	Coverage *CoverageMetrics
	Writeup  *WriteupMetrics
}

// BuildBundle runs every applicable extractor and merges the results
// into a MetricsBundle.
//
// Description:
//
//	For each known artifact type present, runs its extractor and
//	folds the typed record into the normalized bundle. Non-standard
//	fields land in Raw under extractor-qualified keys. The
//	time_to_green_seconds metric comes from sandbox metadata on any
//	artifact carrying it.
//
// Inputs:
//
//	runID - The simulation run being evaluated.
//	artifacts - All artifacts the sandbox produced for the run.
//	logger - Destination for anomaly logs. Must not be nil.
//
// Outputs:
//
//	artifact.MetricsBundle - The merged, normalized metrics.
//	Extracted - The typed per-artifact records, for rule access.
//
// Thread Safety: Pure computation over immutable inputs; safe for
// unrestricted parallel execution across runs.
func BuildBundle(runID string, artifacts []artifact.Artifact, logger *logging.Logger) (artifact.MetricsBundle, Extracted) {
	bundle := artifact.MetricsBundle{
		SimulationRunID: runID,
		Raw:             map[string]any{},
	}
	var ex Extracted

	if a := artifact.ByType(artifacts, artifact.TypeDiff); a != nil {
		d := ExtractDiff(a.Content, logger)
		ex.Diff = &d
		bundle.LinesAdded = d.LinesAdded
		bundle.LinesRemoved = d.LinesRemoved
		bundle.TestAdded = d.TestAdded
		bundle.Raw["diff.files_changed"] = d.FilesChanged
		bundle.Raw["diff.test_files_changed"] = d.TestFilesChanged
		bundle.Raw["diff.test_funcs_added"] = d.TestFuncsAdded
		bundle.Raw["diff.skip_directives_added"] = d.SkipDirectivesAdded
	}

	if a := artifact.ByType(artifacts, artifact.TypeTestLog); a != nil {
		tl := ExtractTestLog(a.Content, logger)
		ex.TestLog = &tl
		if tl.Parsed {
			bundle.TestsPassed = artifact.IntPtr(tl.Passed)
			bundle.TestsFailed = artifact.IntPtr(tl.Failed)
			bundle.TestsSkipped = artifact.IntPtr(tl.Skipped)
			bundle.TestErrors = artifact.IntPtr(tl.Errors)
		}
		bundle.Raw["test_log.format"] = tl.Format
		bundle.Raw["test_log.failing_tests"] = tl.FailingTests
		bundle.Raw["test_log.duration_seconds"] = tl.DurationSeconds
		bundle.Raw["test_log.error_snippets"] = tl.ErrorSnippets
	}

	if a := artifact.ByType(artifacts, artifact.TypeCoverage); a != nil {
		cov := ExtractCoverage(a.Content, logger)
		ex.Coverage = &cov
		bundle.CoveragePercent = artifact.FloatPtr(cov.LineCoveragePercent)
		bundle.Raw["coverage.branch_percent"] = cov.BranchCoveragePercent
		bundle.Raw["coverage.lines_covered"] = cov.LinesCovered
		bundle.Raw["coverage.lines_total"] = cov.LinesTotal
		bundle.Raw["coverage.uncovered_files"] = cov.UncoveredFiles
	}

	if a := artifact.ByType(artifacts, artifact.TypeWriteup); a != nil {
		w := ExtractWriteup(a.Content, logger)
		ex.Writeup = &w
		bundle.WriteupWordCount = w.WordCount
		bundle.Raw["writeup.prompts_answered"] = w.PromptsAnswered
		bundle.Raw["writeup.sections"] = sectionNames(w.Sections)
		bundle.Raw["writeup.has_root_cause"] = w.HasRootCause
		bundle.Raw["writeup.has_tradeoffs"] = w.HasTradeoffs
		bundle.Raw["writeup.has_monitoring"] = w.HasMonitoring
	}

	if ttg, ok := timeToGreen(artifacts); ok {
		bundle.TimeToGreenSeconds = artifact.FloatPtr(ttg)
	}

	return bundle, ex
}

// timeToGreen scans artifact metadata for the sandbox-reported
// time_to_green_seconds value.
func timeToGreen(artifacts []artifact.Artifact) (float64, bool) {
	for _, a := range artifacts {
		raw, ok := a.Metadata["time_to_green_seconds"]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && v >= 0 {
			return v, true
		}
	}
	return 0, false
}

func sectionNames(sections map[string]string) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	return names
}
