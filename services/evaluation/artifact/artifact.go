// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package artifact defines the shared datatypes of the evaluation
// pipeline: simulation artifacts as produced by the sandbox runner,
// the normalized metrics bundle built from them, and the company
// operating model / rubric context used to weight evaluation.
//
// Artifacts are immutable once ingested. The MetricsBundle is built
// once per simulation run and read-only afterward. Nothing in this
// package performs I/O except the YAML loaders in com.go.
package artifact

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Type identifies the kind of artifact a simulation run produced.
type Type string

const (
	// TypeDiff is the candidate's unified diff against the exercise repo.
	TypeDiff Type = "diff"

	// TypeTestLog is the raw test runner output.
	TypeTestLog Type = "test_log"

	// TypeCoverage is a Cobertura-style XML coverage report.
	TypeCoverage Type = "coverage"

	// TypeWriteup is the candidate's written explanation (markdown).
	TypeWriteup Type = "writeup"
)

// IsValid reports whether t is a known artifact type.
//
// Unknown types are accepted by the pipeline (they flow through the
// raw metrics map) but extractors only run for the four known kinds.
func (t Type) IsValid() bool {
	switch t {
	case TypeDiff, TypeTestLog, TypeCoverage, TypeWriteup:
		return true
	default:
		return false
	}
}

// Artifact is one raw output of a sandboxed simulation run.
//
// Artifacts are produced by the sandbox collaborator and never
// modified here. Content is the raw text; binary artifacts are not
// supported by this pipeline.
type Artifact struct {
	// Type categorizes the artifact content.
	Type Type `json:"type" validate:"required"`

	// SimulationRunID keys the artifact to the run that produced it.
	SimulationRunID string `json:"simulation_run_id" validate:"required"`

	// Content is the raw artifact text.
	Content string `json:"content"`

	// Metadata carries sandbox-provided context (runner version,
	// wall-clock duration, exercise id). Optional.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// artifactValidate is the validator instance for artifact datatypes.
var artifactValidate = validator.New()

// Validate checks structural validity of an ingested artifact.
//
// Outputs:
//
//	error - Non-nil if a required field is missing.
//
// Malformed artifact *content* is never an error: extractors degrade
// to zero metrics instead (see the extract package).
func (a *Artifact) Validate() error {
	if err := artifactValidate.Struct(a); err != nil {
		return fmt.Errorf("invalid artifact: %w", err)
	}
	return nil
}

// ByType returns the first artifact of the given type, or nil.
func ByType(artifacts []Artifact, t Type) *Artifact {
	for i := range artifacts {
		if artifacts[i].Type == t {
			return &artifacts[i]
		}
	}
	return nil
}

// HasType reports whether any artifact of the given type is present.
func HasType(artifacts []Artifact, t Type) bool {
	return ByType(artifacts, t) != nil
}
