// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cognitive

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for cognitive assessment operations.
var (
	tracer = otel.Tracer("pulse.cognitive")
	meter  = otel.Meter("pulse.cognitive")
)

// Metrics for cognitive assessment operations.
var (
	assessmentsTotal    metric.Int64Counter
	assessmentDuration  metric.Float64Histogram
	riskFlagsTotal      metric.Int64Counter
	trustScoreHistogram metric.Float64Histogram
	trustScoreGauge     metric.Float64Gauge

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		assessmentsTotal, err = meter.Int64Counter(
			"cognitive_assessments_total",
			metric.WithDescription("Total cognitive assessments by model"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		assessmentDuration, err = meter.Float64Histogram(
			"cognitive_assessment_duration_seconds",
			metric.WithDescription("Cognitive assessment duration by model"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		riskFlagsTotal, err = meter.Int64Counter(
			"cognitive_risk_flags_total",
			metric.WithDescription("Total risk flags raised by dimension and severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		trustScoreHistogram, err = meter.Float64Histogram(
			"cognitive_trust_score",
			metric.WithDescription("Overall trust score distribution by model"),
			metric.WithUnit("1"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		trustScoreGauge, err = meter.Float64Gauge(
			"cognitive_trust_score_last",
			metric.WithDescription("Most recent overall trust score by model"),
			metric.WithUnit("1"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// RecordAssessment records metrics for one completed assessment.
//
// Inputs:
//   - ctx: Context for metric recording.
//   - snap: The completed snapshot.
//   - duration: Wall time spent computing the snapshot.
//
// Thread Safety: Safe for concurrent use.
func RecordAssessment(ctx context.Context, snap *Snapshot, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	if snap == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("model_id", snap.ModelID))

	assessmentsTotal.Add(ctx, 1, attrs)
	assessmentDuration.Record(ctx, duration.Seconds(), attrs)
	trustScoreHistogram.Record(ctx, snap.TrustIndicators.OverallTrust, attrs)
	trustScoreGauge.Record(ctx, snap.TrustIndicators.OverallTrust, attrs)

	for _, f := range snap.RiskFlags {
		riskFlagsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("model_id", snap.ModelID),
			attribute.String("dimension", f.Dimension),
			attribute.String("severity", string(f.Severity)),
		))
	}
}

// StartAssessmentSpan creates the root span for one assessment.
//
// Inputs:
//   - ctx: Parent context.
//   - modelID: Model under assessment.
//   - in: Input bundle, used for input-size attributes. May be nil.
//
// Outputs:
//   - context.Context: Context carrying the span.
//   - trace.Span: The created span.
//
// Thread Safety: Safe for concurrent use.
func StartAssessmentSpan(ctx context.Context, modelID string, in *InputBundle) (context.Context, trace.Span) {
	var predictions, outputs, historyPoints int
	if in != nil {
		predictions = len(in.Predictions)
		outputs = len(in.Outputs)
		historyPoints = len(in.PerformanceHistory)
	}
	return tracer.Start(ctx, "cognitive.Engine.ComputeSnapshot",
		trace.WithAttributes(
			attribute.String("cognitive.model_id", modelID),
			attribute.Int("cognitive.predictions", predictions),
			attribute.Int("cognitive.outputs", outputs),
			attribute.Int("cognitive.history_points", historyPoints),
		),
	)
}

// SetAssessmentSpanResult sets result attributes on an assessment span.
//
// Thread Safety: Safe for concurrent use.
func SetAssessmentSpanResult(span trace.Span, snap *Snapshot) {
	if snap == nil {
		return
	}

	span.SetAttributes(
		attribute.Float64("cognitive.trust.overall", snap.TrustIndicators.OverallTrust),
		attribute.Float64("cognitive.drift.score", snap.Drift.OverallDriftScore.Value),
		attribute.Float64("cognitive.reliability.overall", snap.Reliability.OverallReliability),
		attribute.Float64("cognitive.hallucination.risk", snap.Hallucination.OverallRisk.Value),
		attribute.Float64("cognitive.degradation.score", snap.Degradation.OverallDegradation.Value),
		attribute.Int("cognitive.risk_flags", len(snap.RiskFlags)),
	)
}
