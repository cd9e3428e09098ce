// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

func unprovenResult(t *testing.T, ct proof.ClaimType, dims []string, reason string) proof.Result {
	t.Helper()
	claim, err := proof.NewClaim(ct, proof.Subject{SimulationRunID: "run-1"}, "statement", dims, 0.5)
	require.NoError(t, err)
	return proof.Result{Claim: claim, Status: proof.StatusUnproven, Reason: reason}
}

func TestQuestionsForClaimProvedYieldsNothing(t *testing.T) {
	claim, err := proof.NewClaim(proof.ClaimCommunicationClear, proof.Subject{SimulationRunID: "run-1"},
		"statement", []string{proof.DimensionCommunication}, 0.5)
	require.NoError(t, err)

	res := proof.Result{Claim: claim, Status: proof.StatusProved}
	assert.Empty(t, QuestionsForClaim(res))
}

func TestQuestionsForClaimOrderAndCap(t *testing.T) {
	res := unprovenResult(t, proof.ClaimTimeEfficient,
		[]string{proof.DimensionShippingSpeed},
		"Time to green 3200s exceeds medium-pace threshold 3000s")

	qs := QuestionsForClaim(res)
	require.Len(t, qs, MaxQuestionsPerClaim)

	// Two type templates, then the shipping-speed dimension question,
	// then the reason-derived pace question.
	assert.Equal(t, typeTemplates[proof.ClaimTimeEfficient][0], qs[0].Text)
	assert.Equal(t, typeTemplates[proof.ClaimTimeEfficient][1], qs[1].Text)
	assert.Equal(t, dimensionTemplates[proof.DimensionShippingSpeed], qs[2].Text)
	assert.Equal(t, paceQuestion, qs[3].Text)

	for _, q := range qs {
		assert.Equal(t, proof.ClaimTimeEfficient, q.ClaimType)
		assert.Equal(t, res.Reason, q.Reason)
	}
}

func TestQuestionsForClaimFirstDimensionOnly(t *testing.T) {
	res := unprovenResult(t, proof.ClaimTestingDiscipline,
		[]string{proof.DimensionTestingDiscipline, proof.DimensionCorrectness},
		"no coverage report")

	qs := QuestionsForClaim(res)
	texts := make([]string, 0, len(qs))
	for _, q := range qs {
		texts = append(texts, q.Text)
	}
	assert.Contains(t, texts, dimensionTemplates[proof.DimensionTestingDiscipline])
	assert.NotContains(t, texts, dimensionTemplates[proof.DimensionCorrectness])
}

func TestReasonQuestionKeywords(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   string
	}{
		{"time keyword", "Time to green 4000s exceeds high-pace threshold 2400s", paceQuestion},
		{"timeout keyword", "tagging timeout", paceQuestion},
		{"missing keyword", "Only 1 of 3 writeup quality tags verified (missing: sound_reasoning)", genericFollowUp},
		{"skipped keyword", "Zero failures but 2 skip directives were added to the suite; suite reports tests skipped", genericFollowUp},
		{"no keyword", "No writeup submitted", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reasonQuestion(tt.reason))
		})
	}
}

func TestBuildPacketDeduplicatesAcrossClaims(t *testing.T) {
	// Both claims share a dimension and a reason keyword, so their
	// dimension and reason questions collide across claims.
	a := unprovenResult(t, proof.ClaimAddedRegressionTest,
		[]string{proof.DimensionTestingDiscipline}, "test file missing")
	b := unprovenResult(t, proof.ClaimTestingDiscipline,
		[]string{proof.DimensionTestingDiscipline}, "coverage report missing")

	packet := BuildPacket([]proof.Result{a, b}, 0)

	seen := make(map[string]int)
	for _, q := range packet.Questions {
		seen[q.Text]++
	}
	for text, n := range seen {
		assert.Equal(t, 1, n, "duplicate question in packet: %q", text)
	}
	assert.Contains(t, packet.Texts(), dimensionTemplates[proof.DimensionTestingDiscipline])
	assert.Contains(t, packet.Texts(), genericFollowUp)
}

func TestBuildPacketCap(t *testing.T) {
	var results []proof.Result
	for _, ct := range proof.AllClaimTypes {
		results = append(results, unprovenResult(t, ct, nil, "evidence missing"))
	}

	packet := BuildPacket(results, 0)
	assert.LessOrEqual(t, len(packet.Questions), DefaultMaxPacketQuestions)

	small := BuildPacket(results, 3)
	assert.Len(t, small.Questions, 3)
}

func TestBuildPacketEmptyResults(t *testing.T) {
	packet := BuildPacket(nil, 0)
	assert.Empty(t, packet.Questions)
}
