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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
)

// The rule table must cover the entire closed claim domain.
func TestEngineCoversAllClaimTypes(t *testing.T) {
	engine := NewEngine(logging.Discard())
	assert.ElementsMatch(t, AllClaimTypes, engine.RegisteredTypes())
}

// Every result is terminal, and proved results always carry evidence.
func TestEngineStatusInvariant(t *testing.T) {
	engine := NewEngine(logging.Discard())
	in := &Input{
		Metrics: &artifact.MetricsBundle{
			TestsPassed:     artifact.IntPtr(5),
			TestsFailed:     artifact.IntPtr(1),
			CoveragePercent: artifact.FloatPtr(80),
			TestAdded:       true,
		},
		Artifacts: []artifact.Artifact{
			{Type: artifact.TypeDiff, SimulationRunID: "run-1"},
		},
	}

	for _, claimType := range AllClaimTypes {
		result := engine.Evaluate(context.Background(), testClaim(claimType), in)

		assert.Contains(t, []Status{StatusProved, StatusUnproven}, result.Status)
		if result.Status == StatusProved {
			assert.NotEmpty(t, result.EvidenceRefs, claimType)
		} else {
			assert.NotEmpty(t, result.Reason, claimType)
		}
	}
}

func TestEngineUnknownClaimType(t *testing.T) {
	engine := NewEngine(logging.Discard())
	claim := testClaim(ClaimDebuggingEffective)
	claim.Type = ClaimType("made_up_type")

	result := engine.Evaluate(context.Background(), claim, &Input{})

	assert.Equal(t, StatusUnproven, result.Status)
	assert.Contains(t, result.Reason, "made_up_type")
}

// A panicking rule is isolated to its own claim.
func TestEnginePanicIsolation(t *testing.T) {
	engine := NewEngine(logging.Discard())
	engine.rules[ClaimDebuggingEffective] = func(context.Context, Claim, *Input) Result {
		panic("rule bug")
	}

	in := &Input{Metrics: &artifact.MetricsBundle{TestAdded: true},
		Artifacts: []artifact.Artifact{{Type: artifact.TypeDiff, SimulationRunID: "r"}}}

	bad := engine.Evaluate(context.Background(), testClaim(ClaimDebuggingEffective), in)
	assert.Equal(t, StatusUnproven, bad.Status)
	assert.Equal(t, "evaluation error", bad.Reason)

	// A sibling claim in the same brief is unaffected.
	good := engine.Evaluate(context.Background(), testClaim(ClaimAddedRegressionTest), in)
	assert.Equal(t, StatusProved, good.Status)
}

// A rule that claims proof without evidence is demoted by the engine.
func TestEngineDemotesUnevidencedProof(t *testing.T) {
	engine := NewEngine(logging.Discard())
	engine.rules[ClaimDebuggingEffective] = func(_ context.Context, claim Claim, _ *Input) Result {
		return Result{Claim: claim, Status: StatusProved}
	}

	result := engine.Evaluate(context.Background(), testClaim(ClaimDebuggingEffective), &Input{})

	assert.Equal(t, StatusUnproven, result.Status)
	assert.Equal(t, "evaluation error", result.Reason)
}

// The engine gates tags itself, so callers passing raw tags cannot
// leak an uncited tag into a verdict.
func TestEngineGatesRawTags(t *testing.T) {
	engine := NewEngine(logging.Discard())
	var seen []Tag
	engine.rules[ClaimCommunicationClear] = func(_ context.Context, claim Claim, in *Input) Result {
		seen = in.Tags
		return unproven(claim, "capture only")
	}

	in := &Input{Tags: []Tag{
		{Name: "clear_structure", Confidence: 1.0, EvidenceQuote: "x"},
		{Name: "sound_reasoning", EvidenceQuote: "a sufficiently long quote"},
	}}
	engine.Evaluate(context.Background(), testClaim(ClaimCommunicationClear), in)

	require.Len(t, seen, 1)
	assert.Equal(t, "sound_reasoning", seen[0].Name)
	// The caller's slice is untouched.
	assert.Len(t, in.Tags, 2)
}

func TestEvaluateAll(t *testing.T) {
	engine := NewEngine(logging.Discard())
	in := &Input{
		Metrics: &artifact.MetricsBundle{
			TestsPassed: artifact.IntPtr(6),
			TestsFailed: artifact.IntPtr(0),
			TestAdded:   true,
		},
		Artifacts: []artifact.Artifact{{Type: artifact.TypeDiff, SimulationRunID: "run-1"}},
	}

	claims := []Claim{
		testClaim(ClaimDebuggingEffective, DimensionDebuggingMethod),
		testClaim(ClaimAddedRegressionTest, DimensionTestingDiscipline),
		testClaim(ClaimCommunicationClear, DimensionCommunication),
	}

	results := engine.EvaluateAll(context.Background(), claims, in)

	require.Len(t, results, 3)
	// Order is preserved.
	assert.Equal(t, ClaimDebuggingEffective, results[0].Claim.Type)
	assert.Equal(t, ClaimAddedRegressionTest, results[1].Claim.Type)
	assert.Equal(t, ClaimCommunicationClear, results[2].Claim.Type)

	assert.Equal(t, StatusProved, results[0].Status)
	assert.Equal(t, StatusProved, results[1].Status)
	assert.Equal(t, StatusUnproven, results[2].Status)
}

func TestNewClaimValidation(t *testing.T) {
	subject := Subject{CandidateID: "c", ApplicationID: "a", SimulationRunID: "r"}

	_, err := NewClaim(ClaimType("bogus"), subject, "s", nil, 0.5)
	assert.ErrorIs(t, err, ErrInvalidClaim)

	_, err = NewClaim(ClaimDebuggingEffective, subject, "s", nil, 1.5)
	assert.ErrorIs(t, err, ErrInvalidClaim)

	claim, err := NewClaim(ClaimDebuggingEffective, subject, "s", []string{DimensionDebuggingMethod}, 0.6)
	require.NoError(t, err)
	assert.Equal(t, 0.6, claim.Confidence)
}
