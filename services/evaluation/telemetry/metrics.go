// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exposes Prometheus metrics for the evaluation
// pipeline. Metrics are registered with the default registry via
// promauto; serve them with promhttp at the deployment layer.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsEvaluated counts proof rule outcomes by claim type and
	// terminal status ("proved" / "unproven").
	ClaimsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofdesk_claims_evaluated_total",
		Help: "Proof rule evaluations by claim type and outcome.",
	}, []string{"claim_type", "status"})

	// ExtractorAnomalies counts malformed-input degradations per
	// extractor (unparseable diff, bad XML, unknown log format).
	ExtractorAnomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofdesk_extractor_anomalies_total",
		Help: "Malformed artifact inputs degraded to zero metrics.",
	}, []string{"extractor"})

	// AuditAppends counts audit chain appends per event type.
	AuditAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofdesk_audit_appends_total",
		Help: "Audit log entries appended, by event type.",
	}, []string{"event_type"})

	// TagsDiscarded counts LLM tags dropped by the citation gate.
	TagsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proofdesk_llm_tags_discarded_total",
		Help: "LLM tags discarded for missing or short evidence quotes.",
	})

	// EvaluationDuration observes end-to-end evaluation latency for
	// one application version.
	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proofdesk_evaluation_duration_seconds",
		Help:    "End-to-end evaluation duration per application.",
		Buckets: prometheus.DefBuckets,
	})
)
