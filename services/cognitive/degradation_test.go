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
	"math"
	"strings"
	"testing"
	"time"
)

// dailyHistory builds one performance point per day with the given
// accuracy series and steady latency, throughput, and error rate.
func dailyHistory(accs []float64) []PerformancePoint {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := make([]PerformancePoint, len(accs))
	for i, acc := range accs {
		history[i] = PerformancePoint{
			Timestamp:  base.Add(time.Duration(i) * 24 * time.Hour),
			Accuracy:   acc,
			LatencyP50: 40,
			LatencyP99: 100,
			ErrorRate:  0,
			Throughput: 50,
		}
	}
	return history
}

// decliningAccuracies builds n accuracy values starting at start and
// dropping by step per observation.
func decliningAccuracies(n int, start, step float64) []float64 {
	accs := make([]float64, n)
	for i := range accs {
		accs[i] = start - float64(i)*step
	}
	return accs
}

func TestDegradationTracker_NilGuards(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	if _, err := tr.Track(nil, &InputBundle{}); err != ErrNilContext {
		t.Errorf("expected ErrNilContext, got %v", err)
	}
	if _, err := tr.Track(context.Background(), nil); err != ErrNilInput {
		t.Errorf("expected ErrNilInput, got %v", err)
	}
}

func TestDegradationTracker_EmptyHistory(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	m, err := tr.Track(context.Background(), &InputBundle{})
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	if m.OverallDegradation.Value != 0 {
		t.Errorf("expected zero degradation, got %v", m.OverallDegradation.Value)
	}
	if m.OverallDegradation.Severity != SeverityInfo {
		t.Errorf("expected info severity, got %s", m.OverallDegradation.Severity)
	}
	if m.Projection.Available {
		t.Error("expected no projection without history")
	}
	if len(m.RecommendedActions) != 1 || m.RecommendedActions[0].Action != "monitor" {
		t.Errorf("expected single monitor action, got %v", m.RecommendedActions)
	}
}

func TestDegradationTracker_DecliningAccuracy(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	// Accuracy slides from 1.00 to 0.80 in 0.02 steps over 11 days.
	in := &InputBundle{PerformanceHistory: dailyHistory(decliningAccuracies(11, 1.0, 0.02))}

	m, err := tr.Track(context.Background(), in)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	if len(m.Metrics) != 4 {
		t.Fatalf("expected 4 tracked metrics, got %d", len(m.Metrics))
	}
	wantOrder := []MetricKind{MetricAccuracy, MetricLatency, MetricThroughput, MetricReliability}
	for i, kind := range wantOrder {
		if m.Metrics[i].Metric != kind {
			t.Errorf("metric %d = %s, want %s", i, m.Metrics[i].Metric, kind)
		}
	}

	acc := m.Metrics[0]
	if !almostEqual(acc.BaselineValue, 0.99) {
		t.Errorf("expected baseline 0.99, got %v", acc.BaselineValue)
	}
	if !almostEqual(acc.CurrentValue, 0.81) {
		t.Errorf("expected current 0.81, got %v", acc.CurrentValue)
	}
	wantLoss := (0.99 - 0.81) / 0.99 * 100
	if math.Abs(acc.DegradationPercent-wantLoss) > 1e-6 {
		t.Errorf("expected loss %v%%, got %v%%", wantLoss, acc.DegradationPercent)
	}
	if acc.Trend != TrendDecreasing {
		t.Errorf("expected decreasing trend, got %s", acc.Trend)
	}

	// A clean linear slide has a low coefficient of variation; the
	// significance heuristic stays quiet and so do the actions.
	if acc.IsSignificant {
		t.Error("smooth decline should not register as significant under the CoV heuristic")
	}
	if len(m.RecommendedActions) != 1 || m.RecommendedActions[0].Action != "monitor" {
		t.Errorf("expected monitor action only, got %v", m.RecommendedActions)
	}

	wantOverall := accuracyDegradationWeight * wantLoss / 100
	if math.Abs(m.OverallDegradation.Value-wantOverall) > 1e-6 {
		t.Errorf("expected overall %v, got %v", wantOverall, m.OverallDegradation.Value)
	}
	if m.OverallDegradation.Severity != SeverityLow {
		t.Errorf("expected low severity, got %s", m.OverallDegradation.Severity)
	}

	// Projection: 0.02 per day from 0.80 to the 0.70 floor is 5 days out.
	if !m.Projection.Available {
		t.Fatal("expected projection available")
	}
	if m.Projection.DaysToThreshold == nil {
		t.Fatal("expected days-to-threshold estimate")
	}
	if math.Abs(*m.Projection.DaysToThreshold-5) > 1e-6 {
		t.Errorf("expected 5 days to threshold, got %v", *m.Projection.DaysToThreshold)
	}
	if !strings.Contains(m.Projection.Basis, "reliability threshold 0.70") {
		t.Errorf("unexpected projection basis: %q", m.Projection.Basis)
	}
}

func TestDegradationTracker_ThroughputCollapse(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	history := dailyHistory([]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
	throughputs := []float64{200, 200, 1, 1, 1, 1, 1, 1, 1, 1}
	for i := range history {
		history[i].Throughput = throughputs[i]
	}

	m, err := tr.Track(context.Background(), &InputBundle{PerformanceHistory: history})
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}

	var thr MetricDegradation
	for _, md := range m.Metrics {
		if md.Metric == MetricThroughput {
			thr = md
		}
	}
	if !thr.IsSignificant {
		t.Error("a collapse this noisy should register as significant")
	}
	if math.Abs(thr.DegradationPercent-99.5) > 1e-6 {
		t.Errorf("expected 99.5%% loss, got %v", thr.DegradationPercent)
	}

	// One of four metrics is significant.
	if !almostEqual(m.OverallDegradation.Confidence, 0.25) {
		t.Errorf("expected confidence 0.25, got %v", m.OverallDegradation.Confidence)
	}

	found := false
	for _, a := range m.RecommendedActions {
		if a.Action == "investigate" {
			found = true
			if a.Urgency != SeverityMedium {
				t.Errorf("expected medium urgency, got %s", a.Urgency)
			}
			if !strings.Contains(a.Reason, "throughput dropped") {
				t.Errorf("unexpected reason: %q", a.Reason)
			}
		}
	}
	if !found {
		t.Errorf("expected investigate action, got %v", m.RecommendedActions)
	}

	// Accuracy is flat, so the projection reports no estimate.
	if !m.Projection.Available {
		t.Fatal("expected projection for a flat accuracy trend")
	}
	if m.Projection.DaysToThreshold != nil {
		t.Errorf("expected no days estimate for flat accuracy, got %v", *m.Projection.DaysToThreshold)
	}
}

func TestAnalyzeMetricSeries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		md := analyzeMetricSeries(MetricAccuracy, nil, true)
		if md.Trend != TrendStable || md.PValue != 1 {
			t.Errorf("expected stable trend with p 1, got %+v", md)
		}
	})

	t.Run("latency inversion", func(t *testing.T) {
		values := []float64{100, 100, 150, 150, 150, 150, 150, 150, 200, 200}
		md := analyzeMetricSeries(MetricLatency, values, false)

		if !almostEqual(md.BaselineValue, 100) {
			t.Errorf("expected baseline 100, got %v", md.BaselineValue)
		}
		if !almostEqual(md.CurrentValue, 200) {
			t.Errorf("expected current 200, got %v", md.CurrentValue)
		}
		if math.Abs(md.DegradationPercent-100) > 1e-6 {
			t.Errorf("rising latency should read as 100%% loss, got %v", md.DegradationPercent)
		}
		if md.Slope <= 0 {
			t.Errorf("raw slope should be positive, got %v", md.Slope)
		}
		if md.Trend != TrendDecreasing {
			t.Errorf("rising latency should trend decreasing (deteriorating), got %s", md.Trend)
		}
	})

	t.Run("improvement clamps to zero", func(t *testing.T) {
		values := []float64{0.70, 0.70, 0.80, 0.80, 0.80, 0.80, 0.80, 0.80, 0.90, 0.90}
		md := analyzeMetricSeries(MetricAccuracy, values, true)

		if md.DegradationPercent != 0 {
			t.Errorf("improving accuracy should clamp to 0%% loss, got %v", md.DegradationPercent)
		}
		if md.Trend != TrendIncreasing {
			t.Errorf("expected increasing trend, got %s", md.Trend)
		}
	})

	t.Run("short series not significant", func(t *testing.T) {
		md := analyzeMetricSeries(MetricThroughput, []float64{10, 5, 1}, true)

		if md.IsSignificant || md.PValue != 1 {
			t.Errorf("series below %d points must not be significant, got %+v", minTrendPoints, md)
		}
		if math.Abs(md.DegradationPercent-90) > 1e-6 {
			t.Errorf("expected 90%% loss, got %v", md.DegradationPercent)
		}
	})

	t.Run("high variance is significant", func(t *testing.T) {
		values := []float64{1, 200, 1, 200, 1, 200, 1, 200, 1, 200}
		md := analyzeMetricSeries(MetricThroughput, values, true)

		if !md.IsSignificant {
			t.Errorf("expected significance for extreme variance, got p=%v", md.PValue)
		}
	})

	t.Run("zero baseline guards division", func(t *testing.T) {
		values := []float64{0, 0, 5, 5, 5}
		md := analyzeMetricSeries(MetricThroughput, values, true)
		if md.DegradationPercent != 0 {
			t.Errorf("zero baseline should yield zero loss, got %v", md.DegradationPercent)
		}
	})
}

func TestClassifyTrendSlope(t *testing.T) {
	tests := []struct {
		slope float64
		want  TrendDirection
	}{
		{0.02, TrendIncreasing},
		{0.005, TrendStable},
		{0, TrendStable},
		{-0.005, TrendStable},
		{-0.02, TrendDecreasing},
	}

	for _, tt := range tests {
		if got := classifyTrendSlope(tt.slope); got != tt.want {
			t.Errorf("classifyTrendSlope(%v) = %s, want %s", tt.slope, got, tt.want)
		}
	}
}

func TestDegradationTracker_Project(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	t.Run("negligible degradation", func(t *testing.T) {
		history := dailyHistory(decliningAccuracies(10, 1.0, 0.02))
		if p := tr.project(history, 0.005); p.Available {
			t.Errorf("expected no projection below the negligible bound, got %+v", p)
		}
	})

	t.Run("short history", func(t *testing.T) {
		history := dailyHistory(decliningAccuracies(4, 1.0, 0.05))
		if p := tr.project(history, 0.5); p.Available {
			t.Errorf("expected no projection for a short history, got %+v", p)
		}
	})

	t.Run("flat trend", func(t *testing.T) {
		history := dailyHistory([]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
		p := tr.project(history, 0.5)
		if !p.Available {
			t.Fatal("expected projection available")
		}
		if p.DaysToThreshold != nil {
			t.Errorf("expected no days estimate, got %v", *p.DaysToThreshold)
		}
	})

	t.Run("no usable time span", func(t *testing.T) {
		history := dailyHistory(decliningAccuracies(6, 1.0, 0.04))
		fixed := history[0].Timestamp
		for i := range history {
			history[i].Timestamp = fixed
		}
		if p := tr.project(history, 0.5); p.Available {
			t.Errorf("expected no projection without a time span, got %+v", p)
		}
	})

	t.Run("already below floor", func(t *testing.T) {
		history := dailyHistory(decliningAccuracies(6, 0.6, 0.02))
		p := tr.project(history, 0.5)
		if !p.Available || p.DaysToThreshold == nil {
			t.Fatalf("expected projection with estimate, got %+v", p)
		}
		if *p.DaysToThreshold != 0 {
			t.Errorf("accuracy already below the floor should project 0 days, got %v", *p.DaysToThreshold)
		}
	})
}

func TestDegradationTracker_Recommend(t *testing.T) {
	tr := NewDegradationTracker(DefaultEngineConfig())

	t.Run("retrain urgency scales with loss", func(t *testing.T) {
		mild := []MetricDegradation{{Metric: MetricAccuracy, IsSignificant: true, DegradationPercent: 8, BaselineValue: 0.95}}
		actions := tr.recommend(mild, SeverityScore{Value: 0.03, Severity: SeverityInfo})
		if len(actions) != 1 || actions[0].Action != "retrain" || actions[0].Urgency != SeverityMedium {
			t.Errorf("expected medium retrain, got %v", actions)
		}

		severe := []MetricDegradation{{Metric: MetricAccuracy, IsSignificant: true, DegradationPercent: 20, BaselineValue: 0.95}}
		actions = tr.recommend(severe, SeverityScore{Value: 0.07, Severity: SeverityLow})
		if len(actions) != 1 || actions[0].Action != "retrain" || actions[0].Urgency != SeverityHigh {
			t.Errorf("expected high retrain, got %v", actions)
		}
	})

	t.Run("scale on latency growth", func(t *testing.T) {
		metrics := []MetricDegradation{{Metric: MetricLatency, IsSignificant: true, DegradationPercent: 60, BaselineValue: 120}}
		actions := tr.recommend(metrics, SeverityScore{Value: 0.15, Severity: SeverityMedium})
		if len(actions) != 1 || actions[0].Action != "scale" || actions[0].Urgency != SeverityHigh {
			t.Errorf("expected urgent scale, got %v", actions)
		}
	})

	t.Run("insignificant loss stays quiet", func(t *testing.T) {
		metrics := []MetricDegradation{{Metric: MetricAccuracy, IsSignificant: false, DegradationPercent: 50, BaselineValue: 0.9}}
		actions := tr.recommend(metrics, SeverityScore{Value: 0.17, Severity: SeverityMedium})
		if len(actions) != 1 || actions[0].Action != "monitor" {
			t.Errorf("expected monitor fallback, got %v", actions)
		}
	})

	t.Run("critical overall adds replace", func(t *testing.T) {
		actions := tr.recommend(nil, SeverityScore{Value: 0.4, Severity: SeverityCritical})
		if len(actions) != 1 || actions[0].Action != "replace" || actions[0].Urgency != SeverityCritical {
			t.Errorf("expected replace action, got %v", actions)
		}
	})
}
