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

	"go.opentelemetry.io/otel/attribute"
)

// ----------------------------------------------------------------------------
// Reliability analysis
// ----------------------------------------------------------------------------

// Component weights for overall reliability.
const (
	calibrationWeight = 0.30
	stabilityWeight   = 0.25
	consistencyWeight = 0.25
	robustnessWeight  = 0.20
)

// calibrationBinCount is the number of equal-width confidence bins.
const calibrationBinCount = 10

// trendChangeThreshold is the split-half accuracy difference below which
// the trend reads stable.
const trendChangeThreshold = 0.05

// Placeholder constants standing in for measurements that require
// repeated-run or semantic-model infrastructure this engine does not
// have. They are deliberate stand-ins, not computed values; a production
// deployment substitutes real measurements here.
const (
	simulatedVarianceAcrossRuns    = 0.05
	simulatedSemanticConsistency   = 0.88
	simulatedAdversarialResistance = 0.70
	simulatedEdgeCasePerformance   = 0.65
)

// ReliabilityAnalyzer quantifies whether confidence estimates can be
// trusted and whether model behavior is stable, deterministic, and
// robust.
//
// The analyzer is stateless and safe for concurrent use.
type ReliabilityAnalyzer struct{}

// NewReliabilityAnalyzer builds a ReliabilityAnalyzer.
func NewReliabilityAnalyzer() *ReliabilityAnalyzer {
	return &ReliabilityAnalyzer{}
}

// scoredOutcome pairs a prediction confidence with its observed result.
type scoredOutcome struct {
	confidence float64
	correct    bool
}

// Analyze computes calibration, stability, consistency, and robustness.
//
// Description:
//
//	Calibration buckets ground-truth-matched predictions into ten
//	equal-width confidence bins and derives ECE, MCE, and the Brier
//	score. Stability and consistency derive from the temporal variance
//	of the confidence stream. Robustness mixes placeholder constants
//	with variance-derived tolerances. The component scores combine
//	0.30/0.25/0.25/0.20 into overall reliability.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	in - Input bundle. Must not be nil; empty slices yield zeroed
//	     component structures, never a division by zero.
//
// Outputs:
//
//	*ReliabilityMetrics - Complete reliability assessment.
//	error - ErrNilContext or ErrNilInput on programmer misuse only.
func (a *ReliabilityAnalyzer) Analyze(ctx context.Context, in *InputBundle) (*ReliabilityMetrics, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if in == nil {
		return nil, ErrNilInput
	}

	_, span := tracer.Start(ctx, "cognitive.ReliabilityAnalyzer.Analyze")
	defer span.End()

	confidences := make([]float64, len(in.Predictions))
	for i, p := range in.Predictions {
		confidences[i] = p.Confidence
	}

	m := &ReliabilityMetrics{
		Calibration: analyzeCalibration(matchGroundTruth(in.Predictions, in.GroundTruth)),
		Stability:   analyzeStability(confidences, in.PerformanceHistory),
		Consistency: analyzeConsistency(confidences),
		Robustness:  analyzeRobustness(confidences, in.PerformanceHistory),
		Trend:       accuracyTrend(in.PerformanceHistory),
	}
	m.OverallReliability = clamp01(calibrationWeight*m.Calibration.Score +
		stabilityWeight*m.Stability.Score +
		consistencyWeight*m.Consistency.Score +
		robustnessWeight*m.Robustness.Score)

	span.SetAttributes(
		attribute.Float64("cognitive.reliability.overall", m.OverallReliability),
		attribute.Float64("cognitive.reliability.ece", m.Calibration.ECE),
		attribute.String("cognitive.reliability.trend", string(m.Trend)),
	)

	return m, nil
}

// matchGroundTruth joins predictions with their outcomes by prediction
// ID, preserving prediction order. Predictions without ground truth are
// excluded from calibration.
func matchGroundTruth(preds []PredictionRecord, truth []GroundTruthRecord) []scoredOutcome {
	if len(preds) == 0 || len(truth) == 0 {
		return nil
	}

	correctByID := make(map[string]bool, len(truth))
	for _, t := range truth {
		correctByID[t.PredictionID] = t.Correct
	}

	var outcomes []scoredOutcome
	for _, p := range preds {
		correct, ok := correctByID[p.ID]
		if !ok {
			continue
		}
		outcomes = append(outcomes, scoredOutcome{confidence: p.Confidence, correct: correct})
	}
	return outcomes
}

// analyzeCalibration derives calibration error metrics from matched
// prediction outcomes. Returns a zeroed structure when nothing matched.
func analyzeCalibration(outcomes []scoredOutcome) CalibrationMetrics {
	total := len(outcomes)
	if total == 0 {
		return CalibrationMetrics{}
	}

	type binAccumulator struct {
		confidenceSum float64
		correctCount  int
		count         int
	}
	accumulators := make([]binAccumulator, calibrationBinCount)

	var brierSum float64
	for _, o := range outcomes {
		idx := int(o.confidence * calibrationBinCount)
		if idx >= calibrationBinCount {
			idx = calibrationBinCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		accumulators[idx].confidenceSum += o.confidence
		accumulators[idx].count++
		outcome := 0.0
		if o.correct {
			accumulators[idx].correctCount++
			outcome = 1.0
		}
		brierSum += (o.confidence - outcome) * (o.confidence - outcome)
	}

	binWidth := 1.0 / calibrationBinCount
	bins := make([]CalibrationBin, calibrationBinCount)
	var ece, mce, over, under float64

	for i, acc := range accumulators {
		bins[i] = CalibrationBin{
			LowerBound: float64(i) * binWidth,
			UpperBound: float64(i+1) * binWidth,
			Count:      acc.count,
		}
		if acc.count == 0 {
			continue
		}
		avgConfidence := acc.confidenceSum / float64(acc.count)
		accuracy := float64(acc.correctCount) / float64(acc.count)
		bins[i].AvgConfidence = avgConfidence
		bins[i].Accuracy = accuracy

		gap := avgConfidence - accuracy
		weight := float64(acc.count) / float64(total)
		ece += weight * math.Abs(gap)
		if math.Abs(gap) > mce {
			mce = math.Abs(gap)
		}
		if gap > 0 {
			over += weight * gap
		} else {
			under += weight * (-gap)
		}
	}

	return CalibrationMetrics{
		ECE:             ece,
		MCE:             mce,
		BrierScore:      brierSum / float64(total),
		Overconfidence:  over,
		Underconfidence: under,
		Score:           math.Max(0, 1-ece),
		Bins:            bins,
	}
}

// analyzeStability derives temporal stability from the confidence
// stream. Perturbation sensitivity is a variance proxy, not true
// perturbation testing.
func analyzeStability(confidences []float64, history []PerformancePoint) StabilityMetrics {
	var m StabilityMetrics
	if len(confidences) > 0 {
		v := Variance(confidences)
		m.TemporalVariance = v
		m.OutputConsistency = 1 - math.Min(1, v*2)
		m.PerturbationSensitivity = math.Min(1, v*5)
		m.Score = clamp01((m.OutputConsistency + (1 - m.PerturbationSensitivity)) / 2)
	}
	if len(confidences) >= 2 {
		m.VersionDelta.ConfidenceDelta = confidences[len(confidences)-1] - confidences[0]
	}
	if len(history) >= 2 {
		m.VersionDelta.AccuracyDelta = history[len(history)-1].Accuracy - history[0].Accuracy
	}
	return m
}

// analyzeConsistency derives determinism from confidence variance and
// carries the placeholder repeated-run metrics.
func analyzeConsistency(confidences []float64) ConsistencyMetrics {
	if len(confidences) == 0 {
		return ConsistencyMetrics{}
	}

	determinism := math.Max(0, 1-Variance(confidences)*2)
	return ConsistencyMetrics{
		Determinism:         determinism,
		VarianceAcrossRuns:  simulatedVarianceAcrossRuns,
		SemanticConsistency: simulatedSemanticConsistency,
		Score: clamp01((determinism +
			(1 - simulatedVarianceAcrossRuns) +
			simulatedSemanticConsistency) / 3),
	}
}

// analyzeRobustness mixes placeholder adversarial metrics with
// variance-derived tolerances. Distribution-shift tolerance prefers the
// accuracy history when present, falling back to confidence variance.
func analyzeRobustness(confidences []float64, history []PerformancePoint) RobustnessMetrics {
	if len(confidences) == 0 && len(history) == 0 {
		return RobustnessMetrics{}
	}

	var noise float64
	if len(confidences) > 0 {
		noise = 1 - math.Min(1, Variance(confidences)*2)
	}

	var shiftTolerance float64
	if accs := historyAccuracies(history); len(accs) > 0 {
		shiftTolerance = 1 - math.Min(1, Variance(accs)*5)
	} else if len(confidences) > 0 {
		shiftTolerance = 1 - math.Min(1, Variance(confidences)*5)
	}

	m := RobustnessMetrics{
		AdversarialResistance:      simulatedAdversarialResistance,
		EdgeCasePerformance:        simulatedEdgeCasePerformance,
		NoiseTolerance:             noise,
		DistributionShiftTolerance: shiftTolerance,
	}
	m.Score = clamp01((m.AdversarialResistance + m.EdgeCasePerformance +
		m.NoiseTolerance + m.DistributionShiftTolerance) / 4)
	return m
}

// accuracyTrend classifies the accuracy history by comparing the means
// of its two halves against the ±0.05 change threshold.
func accuracyTrend(history []PerformancePoint) TrendDirection {
	accs := historyAccuracies(history)
	if len(accs) < 2 {
		return TrendStable
	}

	half := len(accs) / 2
	diff := Mean(accs[half:]) - Mean(accs[:half])
	switch {
	case diff > trendChangeThreshold:
		return TrendIncreasing
	case diff < -trendChangeThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// historyAccuracies extracts the accuracy series from history.
func historyAccuracies(history []PerformancePoint) []float64 {
	if len(history) == 0 {
		return nil
	}
	accs := make([]float64, len(history))
	for i, h := range history {
		accs[i] = h.Accuracy
	}
	return accs
}
