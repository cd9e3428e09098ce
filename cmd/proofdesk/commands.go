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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	diffPath     string
	testLogPath  string
	coveragePath string
	writeupPath  string
	comPath      string
	rubricPath   string
	orgID        string
	candidateID  string
	appID        string
	runID        string
	briefVersion int
	timeToGreen  float64
	auditPath    string
	enableLLM    bool
	verbose      bool

	rootCmd = &cobra.Command{
		Use:   "proofdesk",
		Short: "A cli to evaluate coding-simulation artifacts into auditable claim verdicts",
		Long: `Proofdesk turns the artifacts of a timed coding simulation (diff,
test log, coverage report, writeup) into per-claim PROVED/UNPROVEN
verdicts, a candidate brief, and a tamper-evident audit trail.`,
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a simulation run's artifacts and print the candidate brief",
		Run:   runEvaluate, // Defined in cmd_evaluate.go
	}

	// --- Audit Chain ---
	chainCmd = &cobra.Command{
		Use:   "chain",
		Short: "Inspect and verify the audit chain",
	}
	chainVerifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Recompute the chain from genesis and check every stored hash",
		Run:   runChainVerify, // Defined in cmd_chain.go
	}
	chainListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the audit entries for one organization scope",
		Run:   runChainList, // Defined in cmd_chain.go
	}

	// --- Briefs ---
	briefCmd = &cobra.Command{
		Use:   "brief",
		Short: "Inspect recorded candidate briefs",
	}
	briefShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the latest brief recorded for an application",
		Run:   runBriefShow, // Defined in cmd_brief.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&auditPath, "audit-path", "proofdesk-audit", "Directory for the audit chain database")
	rootCmd.PersistentFlags().StringVar(&orgID, "org", "", "Organization ID (audit chain scope)")

	evaluateCmd.Flags().StringVar(&diffPath, "diff", "", "Path to the unified diff artifact")
	evaluateCmd.Flags().StringVar(&testLogPath, "test-log", "", "Path to the test log artifact")
	evaluateCmd.Flags().StringVar(&coveragePath, "coverage", "", "Path to the Cobertura coverage XML artifact")
	evaluateCmd.Flags().StringVar(&writeupPath, "writeup", "", "Path to the candidate writeup artifact")
	evaluateCmd.Flags().StringVar(&comPath, "com", "", "Path to the company operating model YAML")
	evaluateCmd.Flags().StringVar(&rubricPath, "rubric", "", "Path to the rubric YAML")
	evaluateCmd.Flags().StringVar(&candidateID, "candidate", "", "Candidate ID")
	evaluateCmd.Flags().StringVar(&appID, "application", "", "Application ID")
	evaluateCmd.Flags().StringVar(&runID, "run", "", "Simulation run ID")
	evaluateCmd.Flags().IntVar(&briefVersion, "brief-version", 1, "Version number for the assembled brief")
	evaluateCmd.Flags().Float64Var(&timeToGreen, "time-to-green", 0, "Seconds from start until the suite first passed")
	evaluateCmd.Flags().BoolVar(&enableLLM, "llm-tagging", false, "Tag the writeup via the OpenAI collaborator")

	briefShowCmd.Flags().StringVar(&appID, "application", "", "Application ID to look up")

	chainCmd.AddCommand(chainVerifyCmd)
	chainCmd.AddCommand(chainListCmd)
	briefCmd.AddCommand(briefShowCmd)

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(briefCmd)
}
