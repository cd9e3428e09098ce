// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/audit"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

const evalDiff = `diff --git a/pkg/calc/calc_test.go b/pkg/calc/calc_test.go
--- a/pkg/calc/calc_test.go
+++ b/pkg/calc/calc_test.go
@@ -1,1 +1,4 @@
 package calc
+
+func TestDivideByZero(t *testing.T) {
+}
`

const evalWriteup = `# Root Cause

The divide handler never checked for a zero denominator, so the first
zero in production input crashed the worker with a panic.

# Trade-offs

Returning an explicit error changes the handler signature; callers now
must handle it, which we judged better than a sentinel value.

# Monitoring

Added a counter for rejected zero-denominator requests with an alert on
any sustained nonzero rate.
`

type stubTagger struct {
	tags  []proof.Tag
	err   error
	calls int
}

func (s *stubTagger) TagWriteup(context.Context, string, []string) ([]proof.Tag, error) {
	s.calls++
	return s.tags, s.err
}

func testSubject() proof.Subject {
	return proof.Subject{
		CandidateID:     "cand-1",
		ApplicationID:   "app-1",
		SimulationRunID: "run-1",
	}
}

func fullArtifacts() []artifact.Artifact {
	return []artifact.Artifact{
		{Type: artifact.TypeDiff, SimulationRunID: "run-1", Content: evalDiff},
		{Type: artifact.TypeTestLog, SimulationRunID: "run-1", Content: "===== 8 passed in 4.20s =====\n"},
		{
			Type: artifact.TypeWriteup, SimulationRunID: "run-1", Content: evalWriteup,
			Metadata: map[string]string{"time_to_green_seconds": "1500"},
		},
	}
}

func newEvaluator(t *testing.T, tagger *stubTagger) (*Evaluator, *audit.MemoryStore) {
	t.Helper()
	store := audit.NewMemoryStore()
	ev, err := New(Config{
		Tagger: tagger,
		Audit:  audit.NewLogger(store, nil),
		Logger: logging.Discard(),
	})
	require.NoError(t, err)
	return ev, store
}

func TestNewRequiresAuditLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestEvaluateFullRun(t *testing.T) {
	tagger := &stubTagger{tags: []proof.Tag{
		{Name: "clear_structure", Confidence: 0.9, EvidenceQuote: "The divide handler never checked for a zero denominator"},
		{Name: "tradeoff_awareness", Confidence: 0.8, EvidenceQuote: "which we judged better than a sentinel value"},
	}}
	ev, store := newEvaluator(t, tagger)

	// A communication-weighted rubric ranks the communication claim
	// inside the tagging budget.
	rubric := &artifact.Rubric{Weights: map[string]float64{proof.DimensionCommunication: 0.5}}

	b, err := ev.Evaluate(context.Background(), Request{
		Subject:   testSubject(),
		OrgID:     "org-1",
		Version:   1,
		Artifacts: fullArtifacts(),
		Rubric:    rubric,
	})
	require.NoError(t, err)

	total := b.ProvenCount + b.UnprovenCount
	assert.Greater(t, total, 0)
	assert.Equal(t, 1, tagger.calls)

	// Every artifact kind is present and the suite is green, so the
	// debugging, regression-test, pace, and communication claims all
	// prove out.
	proven := make(map[proof.ClaimType]bool)
	for _, res := range b.ProvenClaims {
		proven[res.Claim.Type] = true
	}
	assert.True(t, proven[proof.ClaimDebuggingEffective])
	assert.True(t, proven[proof.ClaimAddedRegressionTest])
	assert.True(t, proven[proof.ClaimCommunicationClear])
	assert.True(t, proven[proof.ClaimTimeEfficient])

	// One audit entry per claim plus the brief entry, on one chain.
	entries, err := store.List(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Len(t, entries, total+1)
	assert.NoError(t, audit.VerifyEntries(entries))
	assert.Equal(t, EventBriefAssembled, entries[len(entries)-1].EventType)
}

func TestEvaluateTaggerFailureDegrades(t *testing.T) {
	tagger := &stubTagger{err: errors.New("upstream timeout")}
	ev, _ := newEvaluator(t, tagger)

	b, err := ev.Evaluate(context.Background(), Request{
		Subject:   testSubject(),
		OrgID:     "org-1",
		Version:   1,
		Artifacts: fullArtifacts(),
	})
	require.NoError(t, err)

	var comm *proof.Result
	for i := range b.UnprovenClaims {
		if b.UnprovenClaims[i].Claim.Type == proof.ClaimCommunicationClear {
			comm = &b.UnprovenClaims[i]
		}
	}
	require.NotNil(t, comm, "communication claim degrades to unproven without tags")
	assert.Equal(t, "Writeup complete but content quality not verified (no LLM tagging)", comm.Reason)
}

func TestEvaluateNoArtifacts(t *testing.T) {
	ev, store := newEvaluator(t, &stubTagger{})

	b, err := ev.Evaluate(context.Background(), Request{
		Subject: testSubject(),
		OrgID:   "org-1",
		Version: 1,
	})
	require.NoError(t, err)

	assert.Zero(t, b.ProvenCount)
	assert.Zero(t, b.ProofRate)

	// Still audited: the brief event is always recorded.
	entries, err := store.List(context.Background(), "org-1")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, EventBriefAssembled, entries[len(entries)-1].EventType)
}

func TestEvaluateRejectsUnsafeRunID(t *testing.T) {
	ev, _ := newEvaluator(t, &stubTagger{})

	_, err := ev.Evaluate(context.Background(), Request{
		Subject: proof.Subject{SimulationRunID: "../escape"},
		OrgID:   "org-1",
		Version: 1,
	})
	assert.Error(t, err)
}

func TestEvaluateSkipsTaggingWithoutWriteup(t *testing.T) {
	tagger := &stubTagger{}
	ev, _ := newEvaluator(t, tagger)

	_, err := ev.Evaluate(context.Background(), Request{
		Subject: testSubject(),
		OrgID:   "org-1",
		Version: 1,
		Artifacts: []artifact.Artifact{
			{Type: artifact.TypeDiff, SimulationRunID: "run-1", Content: evalDiff},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, tagger.calls)
}
