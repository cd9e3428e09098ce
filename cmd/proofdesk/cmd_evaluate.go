// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation"
	"github.com/AleutianAI/proofdesk/services/evaluation/artifact"
	"github.com/AleutianAI/proofdesk/services/evaluation/audit"
	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
	"github.com/AleutianAI/proofdesk/services/llm"
)

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level, Service: "proofdesk"})
}

// loadArtifact reads one artifact file. An empty path contributes
// nothing; missing evidence is handled downstream, not here.
func loadArtifact(path string, t artifact.Type, arts *[]artifact.Artifact) error {
	if path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s artifact: %w", t, err)
	}
	a := artifact.Artifact{Type: t, SimulationRunID: runID, Content: string(content)}
	if t == artifact.TypeWriteup && timeToGreen > 0 {
		a.Metadata = map[string]string{"time_to_green_seconds": fmt.Sprintf("%g", timeToGreen)}
	}
	*arts = append(*arts, a)
	return nil
}

func runEvaluate(_ *cobra.Command, _ []string) {
	logger := newLogger()

	if runID == "" {
		slog.Error("Please provide a simulation run ID using --run")
		return
	}

	var artifacts []artifact.Artifact
	for _, load := range []struct {
		path string
		typ  artifact.Type
	}{
		{diffPath, artifact.TypeDiff},
		{testLogPath, artifact.TypeTestLog},
		{coveragePath, artifact.TypeCoverage},
		{writeupPath, artifact.TypeWriteup},
	} {
		if err := loadArtifact(load.path, load.typ, &artifacts); err != nil {
			slog.Error("Failed to load artifact", "error", err)
			return
		}
	}
	if len(artifacts) == 0 {
		slog.Error("No artifacts provided; pass at least one of --diff, --test-log, --coverage, --writeup")
		return
	}

	var (
		com    *artifact.COM
		rubric *artifact.Rubric
		err    error
	)
	if comPath != "" {
		if com, err = artifact.LoadCOM(comPath); err != nil {
			slog.Error("Failed to load company operating model", "error", err)
			return
		}
	}
	if rubricPath != "" {
		if rubric, err = artifact.LoadRubric(rubricPath); err != nil {
			slog.Error("Failed to load rubric", "error", err)
			return
		}
	}

	store, err := audit.OpenBadgerStore(audit.DefaultBadgerConfig(auditPath))
	if err != nil {
		slog.Error("Failed to open audit store", "path", auditPath, "error", err)
		return
	}
	defer store.Close()

	var tagger llm.Tagger
	if enableLLM {
		openaiTagger, err := llm.NewOpenAITagger()
		if err != nil {
			slog.Error("Failed to initialize OpenAI tagger", "error", err)
			return
		}
		tagger = openaiTagger
	}

	evaluator, err := evaluation.New(evaluation.Config{
		Tagger: tagger,
		Audit:  audit.NewLogger(store, logger),
		Logger: logger,
	})
	if err != nil {
		slog.Error("Failed to construct evaluator", "error", err)
		return
	}

	brief, err := evaluator.Evaluate(context.Background(), evaluation.Request{
		Subject: proof.Subject{
			CandidateID:     candidateID,
			ApplicationID:   appID,
			SimulationRunID: runID,
		},
		OrgID:     orgID,
		Version:   briefVersion,
		Artifacts: artifacts,
		COM:       com,
		Rubric:    rubric,
	})
	if err != nil {
		slog.Error("Evaluation failed", "error", err)
		return
	}

	out, err := json.MarshalIndent(brief, "", "  ")
	if err != nil {
		slog.Error("Failed to render brief", "error", err)
		return
	}
	fmt.Println(string(out))
}
