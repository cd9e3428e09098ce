// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package interview synthesizes follow-up questions for claims the
// proof engine left unproven. Questions are drawn from fixed templates
// keyed by claim type and dimension, plus one context-aware question
// derived from the unproven reason, deduplicated and capped.
package interview

import (
	"strings"

	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

const (
	// MaxQuestionsPerClaim bounds the questions contributed by a
	// single unproven claim.
	MaxQuestionsPerClaim = 4

	// DefaultMaxPacketQuestions bounds the whole packet when no
	// explicit cap is configured.
	DefaultMaxPacketQuestions = 10

	maxTypeTemplatesPerClaim = 2
)

// Question is a single suggested follow-up, tied back to the claim
// that motivated it.
type Question struct {
	Text      string          `json:"text"`
	ClaimType proof.ClaimType `json:"claim_type"`
	Reason    string          `json:"reason,omitempty"`
}

// Packet is the deduplicated question list for one brief.
type Packet struct {
	Questions []Question `json:"questions"`
}

// Texts returns the question strings in packet order.
func (p Packet) Texts() []string {
	out := make([]string, 0, len(p.Questions))
	for _, q := range p.Questions {
		out = append(out, q.Text)
	}
	return out
}

// typeTemplates holds claim-type-specific questions. At most
// maxTypeTemplatesPerClaim are taken per claim, in order.
var typeTemplates = map[proof.ClaimType][]string{
	proof.ClaimDebuggingEffective: {
		"Walk me through how you diagnosed the failing test. What did you look at first?",
		"If the fix had not worked, what would your next debugging step have been?",
	},
	proof.ClaimAddedRegressionTest: {
		"You didn't add a regression test for this fix. How would you write one?",
		"What would a test that catches this bug before your fix look like?",
	},
	proof.ClaimTestingDiscipline: {
		"How do you decide when a change has enough test coverage?",
		"Which parts of this change are riskiest to leave uncovered, and why?",
	},
	proof.ClaimTimeEfficient: {
		"Where did most of your time go during this exercise?",
		"What would you cut or defer if you had half the time?",
	},
	proof.ClaimCommunicationClear: {
		"Summarize the root cause of the bug in two sentences.",
		"What tradeoffs did you weigh when choosing this fix?",
	},
	proof.ClaimHandlesEdgeCases: {
		"What edge cases does your fix not handle?",
		"How would this change behave on empty or malformed input?",
	},
}

// dimensionTemplates holds one question per competency dimension.
// Only the first matching dimension of a claim contributes.
var dimensionTemplates = map[string]string{
	proof.DimensionDebuggingMethod:   "Describe your general approach when a bug reproduces intermittently.",
	proof.DimensionTestingDiscipline: "Tell me about a production bug a test you wrote later caught.",
	proof.DimensionShippingSpeed:     "How do you balance moving fast against leaving cleanup for later?",
	proof.DimensionCommunication:     "How do you keep a writeup useful for someone who wasn't in the code?",
	proof.DimensionCorrectness:       "How do you convince yourself a fix is correct beyond the happy path?",
}

const (
	paceQuestion    = "The exercise ran past the expected pace for this team. What slowed you down, and was it avoidable?"
	genericFollowUp = "Some expected evidence was absent from your submission. Can you walk me through what happened there?"
)

// reasonQuestion keyword-matches the unproven reason to a
// context-aware follow-up. Returns "" when no keyword fires.
func reasonQuestion(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "time"):
		return paceQuestion
	case strings.Contains(lower, "missing"), strings.Contains(lower, "skipped"):
		return genericFollowUp
	default:
		return ""
	}
}

// QuestionsForClaim generates the capped, deduplicated question list
// for one unproven result. Proved results yield nothing.
//
// Order: claim-type templates first (up to two), then the first
// matching dimension template, then the reason-derived question.
// Duplicates keep their first-seen position.
func QuestionsForClaim(res proof.Result) []Question {
	if res.Status != proof.StatusUnproven {
		return nil
	}

	seen := make(map[string]struct{})
	var out []Question
	add := func(text string) {
		if text == "" || len(out) >= MaxQuestionsPerClaim {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, Question{
			Text:      text,
			ClaimType: res.Claim.Type,
			Reason:    res.Reason,
		})
	}

	templates := typeTemplates[res.Claim.Type]
	for i, t := range templates {
		if i >= maxTypeTemplatesPerClaim {
			break
		}
		add(t)
	}
	for _, dim := range res.Claim.Dimensions {
		if q, ok := dimensionTemplates[dim]; ok {
			add(q)
			break
		}
	}
	add(reasonQuestion(res.Reason))

	return out
}

// BuildPacket assembles the packet for one brief from all proof
// results, deduplicating across claims and capping at maxQuestions.
// A non-positive maxQuestions falls back to DefaultMaxPacketQuestions.
func BuildPacket(results []proof.Result, maxQuestions int) Packet {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxPacketQuestions
	}

	seen := make(map[string]struct{})
	var questions []Question
	for _, res := range results {
		for _, q := range QuestionsForClaim(res) {
			if len(questions) >= maxQuestions {
				return Packet{Questions: questions}
			}
			if _, dup := seen[q.Text]; dup {
				continue
			}
			seen[q.Text] = struct{}{}
			questions = append(questions, q)
		}
	}
	return Packet{Questions: questions}
}
