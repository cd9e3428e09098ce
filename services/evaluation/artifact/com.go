// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize is the maximum allowed size for COM and rubric YAML
// files (1MB). Prevents memory issues from oversized or hostile files.
const MaxYAMLFileSize = 1024 * 1024

// Pace is the company's shipping cadence from the operating model.
type Pace string

const (
	PaceHigh   Pace = "high"
	PaceMedium Pace = "medium"
	PaceLow    Pace = "low"
)

// TimeToGreenThresholdSeconds maps company pace to the informational
// time-to-green threshold used to contextualize speed claims.
//
// The threshold is context for prioritization and for the
// time_efficient proof rule; hypothesis generation never gates on it.
func (p Pace) TimeToGreenThresholdSeconds() float64 {
	switch p {
	case PaceHigh:
		return 2400
	case PaceLow:
		return 3600
	default:
		return 3000
	}
}

// COM is the Company Operating Model supplied by the onboarding
// collaborator: a structured profile of the hiring company's pace,
// quality bar, and priorities used to contextualize evaluation.
type COM struct {
	// Pace is the shipping cadence: high, medium, or low.
	Pace Pace `yaml:"pace" json:"pace" validate:"omitempty,oneof=high medium low"`

	// QualityBar describes how strict the company is about polish
	// (free text from onboarding, e.g. "ship fast, fix forward").
	QualityBar string `yaml:"quality_bar" json:"quality_bar"`

	// Priorities are the competency dimensions the company cares
	// about most, highest first.
	Priorities []string `yaml:"priorities" json:"priorities,omitempty"`

	// RiskIntolerance describes areas where mistakes are expensive.
	RiskIntolerance string `yaml:"risk_intolerance" json:"risk_intolerance"`
}

// Validate checks the operating model for structural validity.
func (c *COM) Validate() error {
	if err := artifactValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid operating model: %w", err)
	}
	return nil
}

// Rubric carries the dimension weights and numeric thresholds built
// by the rubric collaborator for one company.
type Rubric struct {
	// Weights maps competency dimension name to its weight. Missing
	// dimensions default to 0.1 during prioritization.
	Weights map[string]float64 `yaml:"weights" json:"weights"`

	// Thresholds carries named numeric cut-offs (e.g.
	// "min_coverage_percent"). Optional.
	Thresholds map[string]float64 `yaml:"thresholds" json:"thresholds,omitempty"`
}

// Weight returns the rubric weight for a dimension, or the default
// 0.1 when the rubric does not mention it.
func (r *Rubric) Weight(dimension string) float64 {
	if r == nil {
		return 0.1
	}
	if w, ok := r.Weights[dimension]; ok {
		return w
	}
	return 0.1
}

// Threshold returns a named threshold and whether it was set.
func (r *Rubric) Threshold(name string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Thresholds[name]
	return v, ok
}

// LoadCOM reads and validates a Company Operating Model YAML file.
//
// Inputs:
//
//	path - Path to the YAML file.
//
// Outputs:
//
//	*COM - The parsed operating model.
//	error - Non-nil on read, size, parse, or validation failure.
func LoadCOM(path string) (*COM, error) {
	data, err := readCappedYAML(path)
	if err != nil {
		return nil, err
	}

	var com COM
	if err := strictUnmarshal(data, &com); err != nil {
		return nil, fmt.Errorf("parsing operating model %s: %w", path, err)
	}
	if err := com.Validate(); err != nil {
		return nil, err
	}
	return &com, nil
}

// LoadRubric reads and validates a rubric YAML file. Negative weights
// are rejected; an empty weight map is allowed (everything defaults
// to 0.1).
func LoadRubric(path string) (*Rubric, error) {
	data, err := readCappedYAML(path)
	if err != nil {
		return nil, err
	}

	var rubric Rubric
	if err := strictUnmarshal(data, &rubric); err != nil {
		return nil, fmt.Errorf("parsing rubric %s: %w", path, err)
	}
	for dim, w := range rubric.Weights {
		if w < 0 {
			return nil, fmt.Errorf("rubric weight for %q is negative (%v)", dim, w)
		}
	}
	return &rubric, nil
}

// readCappedYAML reads a file enforcing MaxYAMLFileSize.
func readCappedYAML(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("%s exceeds maximum YAML size (%d bytes)", path, MaxYAMLFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// strictUnmarshal decodes YAML rejecting unknown fields, so typos in
// hand-edited config surface at load time instead of silently
// defaulting.
func strictUnmarshal(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}
