// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package proof implements the evidence-to-claim verification core:
// claim and verdict datatypes, the citation gate for LLM-derived
// signals, and the per-claim-type rule engine.
//
// The engine's contract is strict: a rule may only mark a claim
// PROVED when it attaches concrete evidence references, and no rule
// may assert a verdict from free text alone. Verdicts are terminal;
// there is no retryable state.
package proof

import (
	"errors"
	"fmt"
)

// Sentinel errors for the proof package.
var (
	// ErrUnknownClaimType is returned when a claim's type has no
	// registered rule.
	ErrUnknownClaimType = errors.New("unknown claim type")

	// ErrInvalidClaim is returned when claim construction fails
	// validation.
	ErrInvalidClaim = errors.New("invalid claim")
)

// Status is the terminal classification of a claim.
type Status string

const (
	// StatusProved means the claim is formally backed by at least
	// one concrete evidence reference.
	StatusProved Status = "proved"

	// StatusUnproven means the claim could not be backed by
	// evidence; the reason states why.
	StatusUnproven Status = "unproven"
)

// ClaimType is the closed enumerated domain of claims the hypothesis
// generator may propose and the engine can evaluate.
type ClaimType string

const (
	// ClaimDebuggingEffective: the candidate drove the suite to a
	// passing state.
	ClaimDebuggingEffective ClaimType = "debugging_effective"

	// ClaimAddedRegressionTest: the candidate added a test covering
	// the fixed behavior.
	ClaimAddedRegressionTest ClaimType = "added_regression_test"

	// ClaimTestingDiscipline: the candidate's work shows coverage
	// discipline.
	ClaimTestingDiscipline ClaimType = "testing_discipline"

	// ClaimTimeEfficient: the candidate reached green within the
	// company's pace expectation.
	ClaimTimeEfficient ClaimType = "time_efficient"

	// ClaimCommunicationClear: the written explanation is complete
	// and of verified quality.
	ClaimCommunicationClear ClaimType = "communication_clear"

	// ClaimHandlesEdgeCases: the final state has no failing tests.
	ClaimHandlesEdgeCases ClaimType = "handles_edge_cases"
)

// AllClaimTypes enumerates the closed domain, in a stable order.
var AllClaimTypes = []ClaimType{
	ClaimDebuggingEffective,
	ClaimAddedRegressionTest,
	ClaimTestingDiscipline,
	ClaimTimeEfficient,
	ClaimCommunicationClear,
	ClaimHandlesEdgeCases,
}

// IsValid reports whether t belongs to the closed claim domain.
func (t ClaimType) IsValid() bool {
	for _, known := range AllClaimTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Competency dimension names. Dimensions are the axes a claim speaks
// to; rubric weights are keyed by these names.
const (
	DimensionDebuggingMethod   = "debugging_method"
	DimensionTestingDiscipline = "testing_discipline"
	DimensionShippingSpeed     = "shipping_speed"
	DimensionCommunication     = "communication"
	DimensionCorrectness       = "correctness"
)

// Subject identifies who and what a claim is about.
type Subject struct {
	CandidateID     string `json:"candidate_id"`
	ApplicationID   string `json:"application_id"`
	SimulationRunID string `json:"simulation_run_id"`
}

// Claim is a proposed, falsifiable statement about candidate
// behavior. Claims are created by the hypothesis generator, never
// mutated, and consumed exactly once by the rule engine.
type Claim struct {
	// Type is the claim's kind, from the closed domain.
	Type ClaimType `json:"claim_type"`

	// Subject identifies the candidate, application, and run.
	Subject Subject `json:"subject"`

	// Statement is the human-readable claim text.
	Statement string `json:"statement"`

	// Dimensions are the competency axes this claim speaks to.
	Dimensions []string `json:"dimensions"`

	// Confidence in [0,1] informs prioritization only. Proof rules
	// are evidence-only and never read it.
	Confidence float64 `json:"confidence"`

	// EvidenceRequirements names the evidence kinds a proof needs.
	EvidenceRequirements []string `json:"evidence_requirements,omitempty"`
}

// NewClaim constructs a validated Claim.
//
// Outputs:
//
//	Claim - The claim, valid on nil error.
//	error - ErrInvalidClaim when the type is outside the closed
//	        domain or confidence is out of [0,1].
func NewClaim(t ClaimType, subject Subject, statement string, dimensions []string, confidence float64) (Claim, error) {
	if !t.IsValid() {
		return Claim{}, fmt.Errorf("%w: claim type %q", ErrInvalidClaim, t)
	}
	if confidence < 0 || confidence > 1 {
		return Claim{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidClaim, confidence)
	}
	return Claim{
		Type:       t,
		Subject:    subject,
		Statement:  statement,
		Dimensions: dimensions,
		Confidence: confidence,
	}, nil
}

// EvidenceRef is a pointer to the concrete metric, artifact field, or
// LLM tag that grounds a verdict.
type EvidenceRef struct {
	// Type is the evidence kind: "metric", "artifact", or "llm_tag".
	Type string `json:"type"`

	// ID names the specific source (metric name, artifact type, tag
	// name).
	ID string `json:"id"`

	// Field is the specific field within the source, if any.
	Field string `json:"field,omitempty"`

	// Value is the observed value, stringified and truncated for
	// storage.
	Value string `json:"value"`
}

// Result is the terminal outcome of evaluating one claim.
type Result struct {
	// Claim is the claim that was evaluated.
	Claim Claim `json:"claim"`

	// Status is PROVED or UNPROVEN; there is no third state.
	Status Status `json:"status"`

	// EvidenceRefs ground the verdict. Non-empty whenever Status is
	// StatusProved.
	EvidenceRefs []EvidenceRef `json:"evidence_refs,omitempty"`

	// Reason is the specific, reproducible explanation for an
	// UNPROVEN verdict; empty for proved claims.
	Reason string `json:"reason,omitempty"`
}

// Proved reports whether the result carries a proved status.
func (r *Result) Proved() bool {
	return r.Status == StatusProved
}

// proved builds a PROVED result. Callers must supply at least one
// evidence ref; the engine enforces this before the result escapes.
func proved(claim Claim, refs ...EvidenceRef) Result {
	return Result{Claim: claim, Status: StatusProved, EvidenceRefs: refs}
}

// unproven builds an UNPROVEN result with the given reason.
func unproven(claim Claim, reason string) Result {
	return Result{Claim: claim, Status: StatusUnproven, Reason: reason}
}
