// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package evaluation orchestrates the evidence-to-claim pipeline:
// extraction, hypothesis generation, prioritization, proof rule
// evaluation, brief assembly, and audit logging.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/pkg/validation"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/audit"
	"github.com/AleutianAI/proofdesk/services/evaluation/brief"
	"github.com/AleutianAI/proofdesk/services/evaluation/extract"
	"github.com/AleutianAI/proofdesk/services/evaluation/hypothesis"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
	"github.com/AleutianAI/proofdesk/services/llm"
)

// defaultTagBudget is how many of the highest-priority claims are
// allowed to consume LLM tagging. Prioritization bounds this expensive
// step; it never affects verdict correctness.
const defaultTagBudget = 3

// Audit event types emitted by the evaluator.
const (
	EventClaimEvaluated = "claim_evaluated"
	EventBriefAssembled = "brief_assembled"
)

// Config assembles an Evaluator's collaborators.
type Config struct {
	// Tagger is the optional LLM tagging collaborator. Nil disables
	// tagging; affected claims degrade to unproven.
	Tagger llm.Tagger

	// Audit receives the evaluation trail. Required.
	Audit *audit.Logger

	// Logger is the pipeline logger. Nil discards.
	Logger *logging.Logger

	// TagBudget caps how many top-priority claims may trigger LLM
	// tagging. Non-positive means defaultTagBudget.
	TagBudget int

	// MaxInterviewQuestions caps the brief's question packet.
	// Non-positive means the interview package default.
	MaxInterviewQuestions int
}

// Evaluator runs the full pipeline for one application version.
//
// Thread Safety: safe for concurrent use; all pipeline state is
// per-call.
type Evaluator struct {
	engine    *proof.Engine
	generator *hypothesis.Generator
	assembler *brief.Assembler
	tagger    llm.Tagger
	audit     *audit.Logger
	logger    *logging.Logger
	tagBudget int
}

// New creates an Evaluator from cfg.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Audit == nil {
		return nil, fmt.Errorf("audit logger is required")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	tagger := cfg.Tagger
	if tagger == nil {
		tagger = llm.NopTagger{}
	}
	budget := cfg.TagBudget
	if budget <= 0 {
		budget = defaultTagBudget
	}
	return &Evaluator{
		engine:    proof.NewEngine(log),
		generator: hypothesis.NewGenerator(log),
		assembler: brief.NewAssembler(cfg.MaxInterviewQuestions),
		tagger:    tagger,
		audit:     cfg.Audit,
		logger:    log,
		tagBudget: budget,
	}, nil
}

// Request carries everything needed to evaluate one application
// version. Artifacts must all belong to the same simulation run.
type Request struct {
	Subject   proof.Subject
	OrgID     string
	Version   int
	Artifacts []artifact.Artifact
	COM       *artifact.COM
	Rubric    *artifact.Rubric
}

// Evaluate runs the pipeline and returns the assembled brief.
//
// Tagging failures degrade the affected claims to unproven; they never
// fail the evaluation. Audit append failures DO fail the evaluation,
// since an unrecorded verdict cannot be trusted.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (brief.CandidateBrief, error) {
	if err := validation.ValidateID("run", req.Subject.SimulationRunID); err != nil {
		return brief.CandidateBrief{}, err
	}
	if err := validation.ValidateOptionalID("org", req.OrgID); err != nil {
		return brief.CandidateBrief{}, err
	}

	start := time.Now()
	defer func() {
		telemetry.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	metrics, extracted := extract.BuildBundle(req.Subject.SimulationRunID, req.Artifacts, e.logger)

	claims := e.generator.Generate(req.Subject, &metrics, req.Artifacts, req.COM)
	claims = hypothesis.Prioritize(claims, req.Rubric)

	input := &proof.Input{
		Metrics:   &metrics,
		Extracted: &extracted,
		Artifacts: req.Artifacts,
		Tags:      e.collectTags(ctx, claims, req.Artifacts),
		COM:       req.COM,
		Rubric:    req.Rubric,
	}

	results := e.engine.EvaluateAll(ctx, claims, input)

	for _, res := range results {
		event := map[string]any{
			"claim_type":        string(res.Claim.Type),
			"status":            string(res.Status),
			"reason":            res.Reason,
			"evidence_count":    len(res.EvidenceRefs),
			"simulation_run_id": req.Subject.SimulationRunID,
		}
		if _, err := e.audit.Append(ctx, req.OrgID, EventClaimEvaluated, event, "evaluator"); err != nil {
			return brief.CandidateBrief{}, fmt.Errorf("record claim verdict: %w", err)
		}
	}

	b := e.assembler.Assemble(req.Subject, req.Version, results)

	// The full brief rides in the event, so the audit chain doubles as
	// the versioned brief record.
	briefEvent := map[string]any{
		"brief_id":       b.ID,
		"application_id": req.Subject.ApplicationID,
		"version":        b.Version,
		"proven_count":   b.ProvenCount,
		"unproven_count": b.UnprovenCount,
		"proof_rate":     b.ProofRate,
		"brief":          b,
	}
	if _, err := e.audit.Append(ctx, req.OrgID, EventBriefAssembled, briefEvent, "evaluator"); err != nil {
		return brief.CandidateBrief{}, fmt.Errorf("record brief: %w", err)
	}

	e.logger.Info("evaluation complete",
		"application_id", req.Subject.ApplicationID,
		"version", b.Version,
		"proven", b.ProvenCount,
		"unproven", b.UnprovenCount,
	)
	return b, nil
}

// collectTags requests writeup tags when a claim that consumes them
// ranks within the tagging budget. Errors and timeouts are logged and
// swallowed; the pipeline proceeds with no tags.
func (e *Evaluator) collectTags(ctx context.Context, prioritized []proof.Claim, artifacts []artifact.Artifact) []proof.Tag {
	writeup := artifact.ByType(artifacts, artifact.TypeWriteup)
	if writeup == nil {
		return nil
	}

	budget := e.tagBudget
	if budget > len(prioritized) {
		budget = len(prioritized)
	}
	wanted := false
	for _, claim := range prioritized[:budget] {
		if claim.Type == proof.ClaimCommunicationClear {
			wanted = true
			break
		}
	}
	if !wanted {
		return nil
	}

	tags, err := e.tagger.TagWriteup(ctx, writeup.Content, proof.RequiredCommunicationTags)
	if err != nil {
		e.logger.Warn("writeup tagging unavailable, proceeding without tags", "error", err)
		return nil
	}
	return tags
}
