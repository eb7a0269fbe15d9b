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
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// ----------------------------------------------------------------------------
// Degradation tracking
// ----------------------------------------------------------------------------

// Component weights for the overall degradation score. Each per-metric
// degradation percentage contributes as a [0,1] fraction.
const (
	accuracyDegradationWeight    = 0.35
	latencyDegradationWeight     = 0.25
	throughputDegradationWeight  = 0.20
	reliabilityDegradationWeight = 0.20
)

const (
	// baselineDivisor selects the earliest and latest 1/5 (20%) of the
	// history as the baseline and current comparison windows.
	baselineDivisor = 5

	// minTrendPoints is the shortest history for which the significance
	// heuristic and the threshold projection are meaningful.
	minTrendPoints = 5

	// slopeTrendEpsilon separates a real trend from regression noise.
	slopeTrendEpsilon = 0.01

	// negligibleDegradation is the overall score below which no
	// projection is attempted.
	negligibleDegradation = 0.01
)

// Action rule thresholds, in percent degradation from baseline.
const (
	retrainAccuracyLossPct   = 5.0
	retrainAccuracyUrgentPct = 15.0

	scaleLatencyLossPct   = 20.0
	scaleLatencyUrgentPct = 50.0

	investigateThroughputLossPct = 15.0
)

// DegradationTracker measures performance decay over the operational
// history window: accuracy, tail latency, throughput, and reliability
// (1 - error rate).
//
// The tracker is stateless; each Track call is a pure function of its
// input. Safe for concurrent use.
type DegradationTracker struct {
	// reliabilityFloor is the accuracy level the projection extrapolates
	// toward.
	reliabilityFloor float64
}

// NewDegradationTracker builds a tracker from the engine configuration.
func NewDegradationTracker(cfg EngineConfig) *DegradationTracker {
	cfg = cfg.Normalize()
	return &DegradationTracker{reliabilityFloor: cfg.Thresholds.Reliability}
}

// trackedMetric pairs a metric kind with its improvement direction.
type trackedMetric struct {
	kind           MetricKind
	higherIsBetter bool
}

// trackedMetrics fixes the analysis order so output is deterministic.
var trackedMetrics = []trackedMetric{
	{MetricAccuracy, true},
	{MetricLatency, false},
	{MetricThroughput, true},
	{MetricReliability, true},
}

// Track computes per-metric and overall degradation over the performance
// history.
//
// Description:
//
//	For each tracked metric the earliest 20% of the history forms the
//	baseline and the latest 20% the current value; relative loss against
//	the baseline is the degradation percentage, clamped non-negative.
//	A least-squares slope classifies the trend and a coefficient-of-
//	variation heuristic stands in for a significance test. The weighted
//	per-metric losses (0.35 accuracy, 0.25 latency, 0.20 throughput,
//	0.20 reliability) form the overall score, and a linear projection of
//	the accuracy trend estimates days until the reliability floor.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	in - Input bundle. Must not be nil; empty history degrades gracefully.
//
// Outputs:
//
//	*DegradationMetrics - Complete degradation assessment, scores in [0,1].
//	error - ErrNilContext or ErrNilInput on programmer misuse only.
func (t *DegradationTracker) Track(ctx context.Context, in *InputBundle) (*DegradationMetrics, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if in == nil {
		return nil, ErrNilInput
	}

	_, span := tracer.Start(ctx, "cognitive.DegradationTracker.Track")
	defer span.End()

	history := in.PerformanceHistory
	if len(history) == 0 {
		m := &DegradationMetrics{
			OverallDegradation: SeverityScore{Severity: SeverityInfo},
		}
		m.RecommendedActions = t.recommend(nil, m.OverallDegradation)
		span.SetAttributes(attribute.Int("cognitive.degradation.history_points", 0))
		return m, nil
	}

	metrics := make([]MetricDegradation, 0, len(trackedMetrics))
	var (
		weightedLoss float64
		significant  int
	)
	for _, tm := range trackedMetrics {
		md := analyzeMetricSeries(tm.kind, metricSeries(history, tm.kind), tm.higherIsBetter)
		metrics = append(metrics, md)
		weightedLoss += degradationWeight(tm.kind) * md.DegradationPercent / 100
		if md.IsSignificant {
			significant++
		}
	}

	overall := clamp01(weightedLoss)
	score := SeverityScore{
		Value:      overall,
		Severity:   severityForScore(overall, degradationSeverityEdges),
		Confidence: float64(significant) / float64(len(trackedMetrics)),
	}

	m := &DegradationMetrics{
		Metrics:            metrics,
		OverallDegradation: score,
		Projection:         t.project(history, overall),
	}
	m.RecommendedActions = t.recommend(metrics, score)

	span.SetAttributes(
		attribute.Float64("cognitive.degradation.score", overall),
		attribute.Int("cognitive.degradation.history_points", len(history)),
		attribute.Int("cognitive.degradation.significant_metrics", significant),
		attribute.Bool("cognitive.degradation.projection_available", m.Projection.Available),
	)

	return m, nil
}

// metricSeries extracts one tracked value series from the history.
// Reliability is the error-rate complement so that, like the others,
// higher means healthier.
func metricSeries(history []PerformancePoint, kind MetricKind) []float64 {
	out := make([]float64, len(history))
	for i, p := range history {
		switch kind {
		case MetricAccuracy:
			out[i] = p.Accuracy
		case MetricLatency:
			out[i] = p.LatencyP99
		case MetricThroughput:
			out[i] = p.Throughput
		case MetricReliability:
			out[i] = 1 - p.ErrorRate
		}
	}
	return out
}

// degradationWeight returns the overall-score weight for one metric kind.
func degradationWeight(kind MetricKind) float64 {
	switch kind {
	case MetricAccuracy:
		return accuracyDegradationWeight
	case MetricLatency:
		return latencyDegradationWeight
	case MetricThroughput:
		return throughputDegradationWeight
	case MetricReliability:
		return reliabilityDegradationWeight
	default:
		return 0
	}
}

// analyzeMetricSeries compares the baseline window against the current
// window and classifies the series trend.
//
// The trend reflects metric health: for lower-is-better metrics the slope
// sign is inverted first, so "decreasing" always reads "deteriorating".
// The significance heuristic is a coefficient-of-variation proxy,
// p = max(0.001, min(1, 1-stddev/|mean|)), and requires at least
// minTrendPoints observations.
func analyzeMetricSeries(kind MetricKind, values []float64, higherIsBetter bool) MetricDegradation {
	n := len(values)
	if n == 0 {
		return MetricDegradation{Metric: kind, Trend: TrendStable, PValue: 1}
	}

	window := n / baselineDivisor
	if window < 1 {
		window = 1
	}
	baseline := Mean(values[:window])
	current := Mean(values[n-window:])

	var lossPct float64
	if baseline != 0 {
		if higherIsBetter {
			lossPct = (baseline - current) / baseline * 100
		} else {
			lossPct = (current - baseline) / baseline * 100
		}
	}
	if lossPct < 0 {
		lossPct = 0
	}

	slope := LinearRegressionSlope(values)
	healthSlope := slope
	if !higherIsBetter {
		healthSlope = -slope
	}

	pValue := 1.0
	significant := false
	if n >= minTrendPoints {
		m := Mean(values)
		if m != 0 {
			cv := StdDev(values) / math.Abs(m)
			pValue = math.Max(pValueFloor, math.Min(1, 1-cv))
		}
		significant = pValue < significanceLevel
	}

	return MetricDegradation{
		Metric:             kind,
		BaselineValue:      baseline,
		CurrentValue:       current,
		DegradationPercent: lossPct,
		Slope:              slope,
		Trend:              classifyTrendSlope(healthSlope),
		PValue:             pValue,
		IsSignificant:      significant,
	}
}

// classifyTrendSlope buckets a regression slope into a trend direction.
func classifyTrendSlope(slope float64) TrendDirection {
	switch {
	case slope > slopeTrendEpsilon:
		return TrendIncreasing
	case slope < -slopeTrendEpsilon:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// project extrapolates the accuracy trend to the reliability floor.
//
// The slope is per observation; the mean observation interval converts it
// to days. Projection is skipped for negligible degradation, short
// histories, and histories without a usable time span.
func (t *DegradationTracker) project(history []PerformancePoint, overall float64) DegradationProjection {
	n := len(history)
	if overall < negligibleDegradation || n < minTrendPoints {
		return DegradationProjection{}
	}

	accs := metricSeries(history, MetricAccuracy)
	slope := LinearRegressionSlope(accs)
	if slope >= 0 {
		return DegradationProjection{
			Available: true,
			Basis:     "accuracy trend is flat or improving",
		}
	}

	interval := history[n-1].Timestamp.Sub(history[0].Timestamp) / time.Duration(n-1)
	if interval <= 0 {
		return DegradationProjection{}
	}

	observations := (accs[n-1] - t.reliabilityFloor) / -slope
	if observations < 0 {
		observations = 0
	}
	days := observations * interval.Hours() / 24

	return DegradationProjection{
		Available:       true,
		DaysToThreshold: &days,
		Basis: fmt.Sprintf("linear accuracy trend against reliability threshold %.2f",
			t.reliabilityFloor),
	}
}

// recommend maps the degradation assessment onto deterministic operator
// actions. Per-metric actions fire only for significant losses above the
// rule thresholds; a critical overall score always adds a replace action.
func (t *DegradationTracker) recommend(metrics []MetricDegradation, overall SeverityScore) []DegradationAction {
	byKind := make(map[MetricKind]MetricDegradation, len(metrics))
	for _, m := range metrics {
		byKind[m.Metric] = m
	}

	var actions []DegradationAction
	if acc, ok := byKind[MetricAccuracy]; ok && acc.IsSignificant && acc.DegradationPercent > retrainAccuracyLossPct {
		urgency := SeverityMedium
		if acc.DegradationPercent > retrainAccuracyUrgentPct {
			urgency = SeverityHigh
		}
		actions = append(actions, DegradationAction{
			Action:  "retrain",
			Urgency: urgency,
			Reason: fmt.Sprintf("accuracy degraded %.1f%% from baseline %.3f",
				acc.DegradationPercent, acc.BaselineValue),
		})
	}
	if lat, ok := byKind[MetricLatency]; ok && lat.IsSignificant && lat.DegradationPercent > scaleLatencyLossPct {
		urgency := SeverityMedium
		if lat.DegradationPercent > scaleLatencyUrgentPct {
			urgency = SeverityHigh
		}
		actions = append(actions, DegradationAction{
			Action:  "scale",
			Urgency: urgency,
			Reason: fmt.Sprintf("p99 latency grew %.1f%% from baseline %.1fms",
				lat.DegradationPercent, lat.BaselineValue),
		})
	}
	if thr, ok := byKind[MetricThroughput]; ok && thr.IsSignificant && thr.DegradationPercent > investigateThroughputLossPct {
		actions = append(actions, DegradationAction{
			Action:  "investigate",
			Urgency: SeverityMedium,
			Reason: fmt.Sprintf("throughput dropped %.1f%% from baseline %.1f req/s",
				thr.DegradationPercent, thr.BaselineValue),
		})
	}
	if overall.Severity == SeverityCritical {
		actions = append(actions, DegradationAction{
			Action:  "replace",
			Urgency: SeverityCritical,
			Reason:  fmt.Sprintf("overall degradation %.2f is critical", overall.Value),
		})
	}

	if len(actions) == 0 {
		actions = append(actions, DegradationAction{
			Action:  "monitor",
			Urgency: SeverityLow,
			Reason:  "no significant performance degradation, continue routine monitoring",
		})
	}
	return actions
}
