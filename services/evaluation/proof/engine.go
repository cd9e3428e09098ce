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

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/extract"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// Input bundles the read-only evidence a rule may consult. Rules
// never mutate any field.
type Input struct {
	// Metrics is the normalized bundle for the claim's run.
	Metrics *artifact.MetricsBundle

	// Extracted carries the typed per-artifact records.
	Extracted *extract.Extracted

	// Artifacts are the raw artifacts of the run.
	Artifacts []artifact.Artifact

	// Tags are the LLM tags for this run, ALREADY gated. The engine
	// re-applies GateTags defensively before dispatch, so a caller
	// passing raw tags cannot leak an uncited tag into a verdict.
	Tags []Tag

	// COM is the company operating model. May be nil.
	COM *artifact.COM

	// Rubric provides thresholds. May be nil.
	Rubric *artifact.Rubric
}

// RuleFunc evaluates one claim against the shared input and returns a
// terminal result. Implementations must be pure reads over the input.
type RuleFunc func(ctx context.Context, claim Claim, in *Input) Result

// Engine dispatches claims to per-type rules via an explicit strategy
// table.
//
// Thread Safety: Safe for concurrent use after construction; the rule
// table is never written after NewEngine returns.
type Engine struct {
	rules  map[ClaimType]RuleFunc
	logger *logging.Logger
}

// NewEngine creates an Engine with the default rule table covering
// every type in AllClaimTypes.
//
// Inputs:
//
//	logger - Destination for evaluation logs. Must not be nil.
//
// Outputs:
//
//	*Engine - The configured engine.
func NewEngine(logger *logging.Logger) *Engine {
	return &Engine{
		logger: logger,
		rules: map[ClaimType]RuleFunc{
			ClaimCommunicationClear:  ruleCommunicationClear,
			ClaimAddedRegressionTest: ruleAddedRegressionTest,
			ClaimTestingDiscipline:   ruleTestingDiscipline,
			ClaimDebuggingEffective:  ruleDebuggingEffective,
			ClaimTimeEfficient:       ruleTimeEfficient,
			ClaimHandlesEdgeCases:    ruleHandlesEdgeCases,
		},
	}
}

// RegisteredTypes returns the claim types the engine can evaluate.
func (e *Engine) RegisteredTypes() []ClaimType {
	types := make([]ClaimType, 0, len(e.rules))
	for _, t := range AllClaimTypes {
		if _, ok := e.rules[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Evaluate runs the rule for one claim.
//
// Description:
//
//	Dispatches on claim type, recovers panics inside the rule to an
//	UNPROVEN "evaluation error" result, and enforces the evidence
//	contract: a PROVED result without evidence refs is demoted to
//	UNPROVEN before it escapes the engine.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	claim - The claim to classify. Consumed exactly once.
//	in - The read-only evidence input. Must not be nil.
//
// Outputs:
//
//	Result - Always terminal: PROVED or UNPROVEN.
//
// Thread Safety: Safe for concurrent use; claims never share mutable
// state.
func (e *Engine) Evaluate(ctx context.Context, claim Claim, in *Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule panicked, isolating failure to this claim",
				"claim_type", claim.Type, "panic", fmt.Sprint(r))
			result = unproven(claim, "evaluation error")
		}
		// Evidence contract: proved verdicts require concrete refs.
		if result.Status == StatusProved && len(result.EvidenceRefs) == 0 {
			e.logger.Error("rule returned proved without evidence, demoting",
				"claim_type", claim.Type)
			result = unproven(claim, "evaluation error")
		}
		telemetry.ClaimsEvaluated.WithLabelValues(string(claim.Type), string(result.Status)).Inc()
	}()

	rule, ok := e.rules[claim.Type]
	if !ok {
		e.logger.Error("no rule registered for claim type", "claim_type", claim.Type)
		return unproven(claim, fmt.Sprintf("no rule registered for claim type %q", claim.Type))
	}

	gated := *in
	gated.Tags = GateTags(in.Tags, e.logger)

	return rule(ctx, claim, &gated)
}

// EvaluateAll evaluates every claim concurrently.
//
// Description:
//
//	Each claim is evaluated independently; a failure in one rule
//	never blocks or taints another. Results preserve claim order.
//
// Thread Safety: Safe; rules only read the shared input.
func (e *Engine) EvaluateAll(ctx context.Context, claims []Claim, in *Input) []Result {
	results := make([]Result, len(claims))

	g, gctx := errgroup.WithContext(ctx)
	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			results[i] = e.Evaluate(gctx, claim, in)
			return nil
		})
	}
	// Rules report failures through UNPROVEN results, never errors.
	_ = g.Wait()

	return results
}
