// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hypothesis proposes candidate claims from extracted metrics
// and orders them by rubric-weighted confidence.
//
// Generation is proposal, not verification: a generated claim asserts
// nothing until the proof engine classifies it. Missing prerequisite
// evidence is not an error; the corresponding claim is simply never
// proposed.
package hypothesis

import (
	"fmt"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

// Base confidences per proposal. Confidence informs prioritization
// only; proof rules are evidence-only and never consult it.
const (
	confidenceDebugging     = 0.6
	confidenceTestAdded     = 0.7
	confidenceDiffOnly      = 0.5
	confidenceCoverage      = 0.6
	confidenceTimeEfficient = 0.6
	confidenceWriteup       = 0.5
	confidenceEdgeCases     = 0.6
)

// Generator proposes claims for one simulation run.
//
// Thread Safety: Safe for concurrent use; Generate is a pure
// computation over immutable inputs.
type Generator struct {
	logger *logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger *logging.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate proposes claims from the available evidence.
//
// Description:
//
//	Applies a fixed proposal table over the metrics bundle and
//	artifact set. Each proposal pairs a claim type with its
//	dimensions and a base confidence. The company pace threshold for
//	time_to_green is recorded as informational context in the claim
//	statement, never as a generation-time gate.
//
// Inputs:
//
//	subject - The candidate/application/run the claims are about.
//	metrics - The normalized metrics bundle for the run.
//	artifacts - The run's raw artifacts.
//	com - The company operating model. May be nil.
//
// Outputs:
//
//	[]proof.Claim - Proposals, in proposal-table order.
func (g *Generator) Generate(subject proof.Subject, metrics *artifact.MetricsBundle, artifacts []artifact.Artifact, com *artifact.COM) []proof.Claim {
	var claims []proof.Claim

	add := func(t proof.ClaimType, statement string, dims []string, confidence float64, evidence ...string) {
		claim, err := proof.NewClaim(t, subject, statement, dims, confidence)
		if err != nil {
			// Proposal table bug, not input badness.
			g.logger.Error("skipping invalid claim proposal", "claim_type", t, "error", err)
			return
		}
		claim.EvidenceRequirements = evidence
		claims = append(claims, claim)
	}

	if metrics.HasTestResults() {
		add(proof.ClaimDebuggingEffective,
			"Candidate drove the test suite to a final state",
			[]string{proof.DimensionDebuggingMethod},
			confidenceDebugging,
			"test_log")
	}

	if metrics.TestAdded || artifact.HasType(artifacts, artifact.TypeDiff) {
		confidence := confidenceDiffOnly
		if metrics.TestAdded {
			confidence = confidenceTestAdded
		}
		add(proof.ClaimAddedRegressionTest,
			"Candidate added a regression test for the fixed behavior",
			[]string{proof.DimensionTestingDiscipline},
			confidence,
			"diff")
	}

	if metrics.HasCoverage() || artifact.HasType(artifacts, artifact.TypeCoverage) {
		add(proof.ClaimTestingDiscipline,
			"Candidate's change maintains line coverage discipline",
			[]string{proof.DimensionTestingDiscipline},
			confidenceCoverage,
			"coverage")
	}

	if metrics.TimeToGreenSeconds != nil {
		pace := artifact.PaceMedium
		if com != nil && com.Pace != "" {
			pace = com.Pace
		}
		add(proof.ClaimTimeEfficient,
			fmt.Sprintf("Candidate reached green within the %s-pace expectation (threshold %.0fs)",
				pace, pace.TimeToGreenThresholdSeconds()),
			[]string{proof.DimensionShippingSpeed},
			confidenceTimeEfficient,
			"test_log")
	}

	if artifact.HasType(artifacts, artifact.TypeWriteup) {
		add(proof.ClaimCommunicationClear,
			"Candidate communicates the change clearly in writing",
			[]string{proof.DimensionCommunication},
			confidenceWriteup,
			"writeup", "llm_tags")
	}

	if metrics.TestsFailed != nil && *metrics.TestsFailed == 0 {
		add(proof.ClaimHandlesEdgeCases,
			"Candidate's final state handles the exercised edge cases",
			[]string{proof.DimensionCorrectness},
			confidenceEdgeCases,
			"test_log")
	}

	g.logger.Debug("claims proposed",
		"run_id", subject.SimulationRunID, "count", len(claims))
	return claims
}
