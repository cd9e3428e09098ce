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
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/extract"
)

// requiredPromptCount is how many writeup prompts must be answered
// before communication quality is even considered.
const requiredPromptCount = 3

// minVerifiedCommunicationTags is how many distinct quality tags must
// survive the citation gate for communication_clear to be proved.
const minVerifiedCommunicationTags = 2

// RequiredCommunicationTags is the tag set the tagging collaborator
// is asked to produce for a writeup.
var RequiredCommunicationTags = []string{
	"clear_structure",
	"sound_reasoning",
	"tradeoff_awareness",
}

// defaultMinCoveragePercent applies when the rubric sets no
// min_coverage_percent threshold.
const defaultMinCoveragePercent = 60.0

// Every rule follows the same canonical shape: locate the required
// evidence kind(s), check structural sufficiency, apply the citation
// gate to any external signal, then emit PROVED with refs or UNPROVEN
// with a specific, reproducible reason string.

// ruleCommunicationClear proves communication quality from writeup
// structure plus gated LLM tags. Absence of the external signal is
// never treated as proof.
func ruleCommunicationClear(_ context.Context, claim Claim, in *Input) Result {
	if !artifact.HasType(in.Artifacts, artifact.TypeWriteup) {
		return unproven(claim, "No writeup submitted")
	}

	answered := promptsAnswered(in)
	if answered < requiredPromptCount {
		return unproven(claim, fmt.Sprintf(
			"Only %d of %d required prompts answered", answered, requiredPromptCount))
	}

	if len(in.Tags) == 0 {
		return unproven(claim, "Writeup complete but content quality not verified (no LLM tagging)")
	}

	// Tags reaching a rule have already passed the citation gate;
	// count the distinct required ones.
	verified := map[string]Tag{}
	for _, tag := range in.Tags {
		for _, required := range RequiredCommunicationTags {
			if tag.Name == required {
				if _, seen := verified[required]; !seen {
					verified[required] = tag
				}
			}
		}
	}

	if len(verified) < minVerifiedCommunicationTags {
		missing := []string{}
		for _, required := range RequiredCommunicationTags {
			if _, ok := verified[required]; !ok {
				missing = append(missing, required)
			}
		}
		return unproven(claim, fmt.Sprintf(
			"Only %d of %d writeup quality tags verified (missing: %s)",
			len(verified), len(RequiredCommunicationTags), strings.Join(missing, ", ")))
	}

	names := make([]string, 0, len(verified))
	for name := range verified {
		names = append(names, name)
	}
	sort.Strings(names)

	refs := make([]EvidenceRef, 0, len(verified))
	for _, name := range names {
		refs = append(refs, tagRef(verified[name]))
	}
	return proved(claim, refs...)
}

// ruleAddedRegressionTest proves the claim from diff structure alone.
func ruleAddedRegressionTest(_ context.Context, claim Claim, in *Input) Result {
	if !artifact.HasType(in.Artifacts, artifact.TypeDiff) {
		return unproven(claim, "No diff submitted")
	}
	if in.Metrics == nil || !in.Metrics.TestAdded {
		return unproven(claim, "Diff adds no test files or test functions")
	}

	refs := []EvidenceRef{metricRef("test_added", "true")}
	if d := diffRecord(in); d != nil {
		if len(d.TestFilesChanged) > 0 {
			refs = append(refs, EvidenceRef{
				Type:  "artifact",
				ID:    string(artifact.TypeDiff),
				Field: "test_files_changed",
				Value: strings.Join(d.TestFilesChanged, ", "),
			})
		}
		if d.TestFuncsAdded > 0 {
			refs = append(refs, EvidenceRef{
				Type:  "artifact",
				ID:    string(artifact.TypeDiff),
				Field: "test_funcs_added",
				Value: strconv.Itoa(d.TestFuncsAdded),
			})
		}
	}
	return proved(claim, refs...)
}

// ruleTestingDiscipline proves coverage discipline against the rubric
// threshold (default 60%).
func ruleTestingDiscipline(_ context.Context, claim Claim, in *Input) Result {
	if in.Metrics == nil || !in.Metrics.HasCoverage() {
		return unproven(claim, "No coverage report submitted")
	}

	required := defaultMinCoveragePercent
	if v, ok := in.Rubric.Threshold("min_coverage_percent"); ok {
		required = v
	}

	coverage := *in.Metrics.CoveragePercent
	if coverage < required {
		return unproven(claim, fmt.Sprintf(
			"Line coverage %.1f%% below required %.1f%%", coverage, required))
	}

	refs := []EvidenceRef{
		metricRef("coverage_percent", fmt.Sprintf("%.1f", coverage)),
	}
	if in.Metrics.TestAdded {
		refs = append(refs, metricRef("test_added", "true"))
	}
	return proved(claim, refs...)
}

// ruleDebuggingEffective proves the candidate drove the suite green.
func ruleDebuggingEffective(_ context.Context, claim Claim, in *Input) Result {
	if in.Metrics == nil || !in.Metrics.HasTestResults() {
		return unproven(claim, "No test results available")
	}

	passed := *in.Metrics.TestsPassed
	failed := 0
	if in.Metrics.TestsFailed != nil {
		failed = *in.Metrics.TestsFailed
	}

	if failed > 0 {
		return unproven(claim, fmt.Sprintf("%d tests still failing", failed))
	}
	if passed == 0 {
		return unproven(claim, "Suite reports no passing tests")
	}

	return proved(claim,
		metricRef("tests_passed", strconv.Itoa(passed)),
		metricRef("tests_failed", strconv.Itoa(failed)),
	)
}

// ruleTimeEfficient proves pace against the company operating model's
// time-to-green threshold.
func ruleTimeEfficient(_ context.Context, claim Claim, in *Input) Result {
	if in.Metrics == nil || in.Metrics.TimeToGreenSeconds == nil {
		return unproven(claim, "No time-to-green measurement available")
	}

	pace := artifact.PaceMedium
	if in.COM != nil && in.COM.Pace != "" {
		pace = in.COM.Pace
	}
	threshold := pace.TimeToGreenThresholdSeconds()

	elapsed := *in.Metrics.TimeToGreenSeconds
	if elapsed > threshold {
		return unproven(claim, fmt.Sprintf(
			"Time to green %.0fs exceeds %s-pace threshold %.0fs", elapsed, pace, threshold))
	}

	return proved(claim,
		metricRef("time_to_green_seconds", fmt.Sprintf("%.1f", elapsed)),
	)
}

// ruleHandlesEdgeCases proves edge-case handling from a clean final
// suite. Added skip directives veto the proof: silencing tests is not
// handling edge cases.
func ruleHandlesEdgeCases(_ context.Context, claim Claim, in *Input) Result {
	if in.Metrics == nil || in.Metrics.TestsFailed == nil {
		return unproven(claim, "No test results available")
	}

	failed := *in.Metrics.TestsFailed
	if failed > 0 {
		return unproven(claim, fmt.Sprintf("%d failing tests indicate unhandled cases", failed))
	}

	if d := diffRecord(in); d != nil && d.SkipDirectivesAdded > 0 {
		return unproven(claim, fmt.Sprintf(
			"Zero failures but %d skip directives were added to the suite", d.SkipDirectivesAdded))
	}

	refs := []EvidenceRef{metricRef("failed_tests_count", "0")}
	if in.Metrics.TestsPassed != nil && *in.Metrics.TestsPassed > 0 {
		refs = append(refs, metricRef("tests_passed", strconv.Itoa(*in.Metrics.TestsPassed)))
	}
	return proved(claim, refs...)
}

// metricRef builds an evidence ref pointing at a bundle metric.
func metricRef(name, value string) EvidenceRef {
	return EvidenceRef{Type: "metric", ID: name, Value: value}
}

// diffRecord returns the typed diff record if extraction produced one.
func diffRecord(in *Input) *extract.DiffMetrics {
	if in.Extracted == nil {
		return nil
	}
	return in.Extracted.Diff
}

// promptsAnswered reads the writeup prompt count from the typed
// record, falling back to the raw metrics map.
func promptsAnswered(in *Input) int {
	if in.Extracted != nil && in.Extracted.Writeup != nil {
		return in.Extracted.Writeup.PromptsAnswered
	}
	if in.Metrics != nil {
		if n, ok := in.Metrics.Raw["writeup.prompts_answered"].(int); ok {
			return n
		}
	}
	return 0
}
