// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package brief aggregates proof results for one candidate
// application into a versioned, JSON-serializable CandidateBrief.
//
// A brief is assembled once per evaluated application version and
// never mutated in place; re-evaluation produces a new version.
package brief

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/proofdesk/services/evaluation/interview"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

// DimensionStatus summarizes how a competency dimension fared across
// all claims that touch it.
type DimensionStatus string

const (
	// DimensionProved means at least one claim touching the
	// dimension was proved.
	DimensionProved DimensionStatus = "proved"

	// DimensionUnproven means no touching claim was proved but at
	// least one was evaluated and left unproven.
	DimensionUnproven DimensionStatus = "unproven"

	// DimensionNotEvaluated means no claim touched the dimension.
	DimensionNotEvaluated DimensionStatus = "not_evaluated"
)

// CandidateBrief is the aggregate verdict for one application.
type CandidateBrief struct {
	ID            string    `json:"id"`
	CandidateID   string    `json:"candidate_id,omitempty"`
	ApplicationID string    `json:"application_id,omitempty"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`

	ProvenClaims   []proof.Result `json:"proven_claims"`
	UnprovenClaims []proof.Result `json:"unproven_claims"`
	RiskFlags      []string       `json:"risk_flags"`

	ProvenCount   int     `json:"proven_count"`
	UnprovenCount int     `json:"unproven_count"`
	ProofRate     float64 `json:"proof_rate"`

	DimensionsCovered map[string]DimensionStatus `json:"dimensions_covered"`

	SuggestedInterviewQuestions []string `json:"suggested_interview_questions"`
}

// Assembler builds briefs from proof results. The zero value is not
// usable; construct with NewAssembler.
type Assembler struct {
	maxQuestions int
}

// NewAssembler returns an assembler whose interview packets are
// capped at maxQuestions. A non-positive cap falls back to
// interview.DefaultMaxPacketQuestions.
func NewAssembler(maxQuestions int) *Assembler {
	if maxQuestions <= 0 {
		maxQuestions = interview.DefaultMaxPacketQuestions
	}
	return &Assembler{maxQuestions: maxQuestions}
}

// Assemble aggregates results into a new brief version.
//
// Proof rate guards the zero-claim case: an empty result set yields
// rate 0, not NaN. Dimension coverage applies proved > unproven >
// not_evaluated precedence per dimension.
func (a *Assembler) Assemble(subject proof.Subject, version int, results []proof.Result) CandidateBrief {
	b := CandidateBrief{
		ID:                uuid.NewString(),
		CandidateID:       subject.CandidateID,
		ApplicationID:     subject.ApplicationID,
		Version:           version,
		CreatedAt:         time.Now().UTC(),
		ProvenClaims:      []proof.Result{},
		UnprovenClaims:    []proof.Result{},
		RiskFlags:         []string{},
		DimensionsCovered: make(map[string]DimensionStatus),
	}

	for _, res := range results {
		if res.Proved() {
			b.ProvenClaims = append(b.ProvenClaims, res)
		} else {
			b.UnprovenClaims = append(b.UnprovenClaims, res)
		}
		for _, dim := range res.Claim.Dimensions {
			if b.DimensionsCovered[dim] == DimensionProved {
				continue
			}
			if res.Proved() {
				b.DimensionsCovered[dim] = DimensionProved
			} else {
				b.DimensionsCovered[dim] = DimensionUnproven
			}
		}
	}

	b.ProvenCount = len(b.ProvenClaims)
	b.UnprovenCount = len(b.UnprovenClaims)
	if total := b.ProvenCount + b.UnprovenCount; total > 0 {
		b.ProofRate = float64(b.ProvenCount) / float64(total)
	}

	b.RiskFlags = riskFlags(results)
	b.SuggestedInterviewQuestions = interview.BuildPacket(results, a.maxQuestions).Texts()
	if b.SuggestedInterviewQuestions == nil {
		b.SuggestedInterviewQuestions = []string{}
	}

	return b
}

// riskFlags derives coarse warnings from unproven core claims.
func riskFlags(results []proof.Result) []string {
	flags := []string{}
	for _, res := range results {
		if res.Proved() {
			continue
		}
		switch res.Claim.Type {
		case proof.ClaimAddedRegressionTest:
			flags = append(flags, "no regression test for the fix")
		case proof.ClaimHandlesEdgeCases:
			flags = append(flags, "edge-case handling not demonstrated")
		case proof.ClaimDebuggingEffective:
			flags = append(flags, "debugging outcome not verified")
		}
		if res.Reason == "evaluation error" {
			flags = append(flags, fmt.Sprintf("claim %s failed to evaluate", res.Claim.Type))
		}
	}
	return flags
}
