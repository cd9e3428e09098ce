// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hypothesis

import (
	"sort"

	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

// Priority scores one claim: the sum of rubric weights over the
// claim's dimensions (0.1 default per unweighted dimension) times the
// claim's confidence.
//
// Priority only bounds expensive steps, such as which claims consume
// scarce LLM-tagging budget. It never affects verdict correctness.
func Priority(claim proof.Claim, rubric *artifact.Rubric) float64 {
	weight := 0.0
	for _, dim := range claim.Dimensions {
		weight += rubric.Weight(dim)
	}
	if len(claim.Dimensions) == 0 {
		weight = 0.1
	}
	return weight * claim.Confidence
}

// Prioritize returns the claims sorted by descending priority. The
// sort is stable, so the proposal-table order breaks ties. The input
// slice is not modified.
func Prioritize(claims []proof.Claim, rubric *artifact.Rubric) []proof.Claim {
	ordered := make([]proof.Claim, len(claims))
	copy(ordered, claims)

	sort.SliceStable(ordered, func(i, j int) bool {
		return Priority(ordered[i], rubric) > Priority(ordered[j], rubric)
	})
	return ordered
}
