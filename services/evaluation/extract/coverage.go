// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"encoding/xml"
	"strings"

	"github.com/AleutianAI/proofdesk/pkg/logging"
	"github.com/AleutianAI/proofdesk/services/evaluation/telemetry"
)

// CoverageMetrics is the typed record pulled out of a Cobertura-style
// XML coverage report.
type CoverageMetrics struct {
	// LineCoveragePercent is line coverage 0-100 from the report's
	// root line-rate attribute.
	LineCoveragePercent float64 `json:"line_coverage_percent"`

	// BranchCoveragePercent is branch coverage 0-100, 0 if absent.
	BranchCoveragePercent float64 `json:"branch_coverage_percent"`

	// LinesCovered / LinesTotal come from the root attributes.
	LinesCovered int `json:"lines_covered"`
	LinesTotal   int `json:"lines_total"`

	// UncoveredFiles maps filename to the line numbers with zero
	// hits. Never nil.
	UncoveredFiles map[string][]int `json:"uncovered_files"`
}

// cobertura mirrors the subset of the Cobertura schema we consume.
type cobertura struct {
	XMLName      xml.Name           `xml:"coverage"`
	LineRate     float64            `xml:"line-rate,attr"`
	BranchRate   float64            `xml:"branch-rate,attr"`
	LinesCovered int                `xml:"lines-covered,attr"`
	LinesValid   int                `xml:"lines-valid,attr"`
	Packages     []coberturaPackage `xml:"packages>package"`
}

type coberturaPackage struct {
	Classes []coberturaClass `xml:"classes>class"`
}

type coberturaClass struct {
	Filename string          `xml:"filename,attr"`
	Lines    []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int `xml:"number,attr"`
	Hits   int `xml:"hits,attr"`
}

// ExtractCoverage parses a Cobertura XML report into CoverageMetrics.
//
// Description:
//
//	Computes line/branch percentages from the root attributes and
//	per-file uncovered line numbers from the package/class/line walk.
//	Malformed XML degrades to all-zero metrics with an empty
//	UncoveredFiles map; it never returns an error.
//
// Thread Safety: Pure function, safe for concurrent use.
func ExtractCoverage(content string, logger *logging.Logger) CoverageMetrics {
	m := CoverageMetrics{UncoveredFiles: map[string][]int{}}
	if strings.TrimSpace(content) == "" {
		return m
	}

	var report cobertura
	if err := xml.Unmarshal([]byte(content), &report); err != nil {
		telemetry.ExtractorAnomalies.WithLabelValues("coverage").Inc()
		logger.Warn("coverage report is not well-formed XML", "error", err)
		return m
	}

	m.LineCoveragePercent = report.LineRate * 100
	m.BranchCoveragePercent = report.BranchRate * 100
	m.LinesCovered = report.LinesCovered
	m.LinesTotal = report.LinesValid

	for _, pkg := range report.Packages {
		for _, class := range pkg.Classes {
			for _, line := range class.Lines {
				if line.Hits == 0 && class.Filename != "" {
					m.UncoveredFiles[class.Filename] = append(
						m.UncoveredFiles[class.Filename], line.Number)
				}
			}
		}
	}

	// Reports without root totals still carry per-line data; derive
	// the totals so downstream consumers see consistent numbers.
	if m.LinesTotal == 0 {
		covered, total := 0, 0
		for _, pkg := range report.Packages {
			for _, class := range pkg.Classes {
				for _, line := range class.Lines {
					total++
					if line.Hits > 0 {
						covered++
					}
				}
			}
		}
		m.LinesCovered = covered
		m.LinesTotal = total
		if total > 0 && m.LineCoveragePercent == 0 {
			m.LineCoveragePercent = float64(covered) / float64(total) * 100
		}
	}

	return m
}
