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
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// ----------------------------------------------------------------------------
// Drift detection
// ----------------------------------------------------------------------------

// Component weights for the overall drift score.
const (
	dataDriftWeight       = 0.40
	conceptDriftWeight    = 0.35
	predictionDriftWeight = 0.25
)

const (
	// conceptMinWindow is the smallest change-point comparison window.
	// Streams shorter than this cannot produce change points.
	conceptMinWindow = 10

	// conceptChangeThreshold is the minimum absolute mean-confidence
	// difference between adjacent windows that counts as a change point.
	conceptChangeThreshold = 0.1

	// conceptConfidenceGain scales a change magnitude into a change-point
	// confidence, capped at 1.
	conceptConfidenceGain = 5.0

	// significanceLevel is the p-value bound for statistical significance.
	significanceLevel = 0.05

	// pValueFloor keeps p-values strictly positive.
	pValueFloor = 0.001

	// psiFloor avoids log(0) on empty histogram buckets.
	psiFloor = 0.001

	// stdDevFloor guards divisions by a degenerate reference spread.
	stdDevFloor = 0.001
)

// DriftDetector detects whether the statistical relationship between
// inputs, model behavior, and outputs has shifted.
//
// The detector is stateless; each Detect call is a pure function of its
// input. Safe for concurrent use.
type DriftDetector struct {
	threshold float64
}

// NewDriftDetector builds a detector from the engine configuration.
func NewDriftDetector(cfg EngineConfig) *DriftDetector {
	cfg = cfg.Normalize()
	return &DriftDetector{threshold: cfg.Thresholds.Drift}
}

// Detect computes data, concept, and prediction drift over the bundle.
//
// Description:
//
//	Data drift compares per-feature distribution summaries between the
//	reference and current sets. Concept drift scans the prediction
//	confidence stream for change points. Prediction drift compares the
//	confidence distribution of the first and second half of the stream.
//	The three component scores combine 0.40/0.35/0.25 into the overall
//	drift score.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	in - Input bundle. Must not be nil; empty slices degrade gracefully.
//
// Outputs:
//
//	*DriftMetrics - Complete drift assessment, scores in [0,1].
//	error - ErrNilContext or ErrNilInput on programmer misuse only.
func (d *DriftDetector) Detect(ctx context.Context, in *InputBundle) (*DriftMetrics, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if in == nil {
		return nil, ErrNilInput
	}

	_, span := tracer.Start(ctx, "cognitive.DriftDetector.Detect")
	defer span.End()

	data := d.analyzeDataDrift(in.ReferenceData, in.CurrentData)
	concept := d.analyzeConceptDrift(in.Predictions)
	prediction := d.analyzePredictionDrift(in.Predictions)

	overall := clamp01(dataDriftWeight*data.Score +
		conceptDriftWeight*concept.Score +
		predictionDriftWeight*prediction.Score)

	m := &DriftMetrics{
		DataDrift:       data,
		ConceptDrift:    concept,
		PredictionDrift: prediction,
		OverallDriftScore: SeverityScore{
			Value:      overall,
			Severity:   severityForScore(overall, driftSeverityEdges),
			Confidence: driftConfidence(data, concept, prediction),
		},
		DriftDetected: overall > d.threshold,
	}
	m.Recommendations = d.recommend(m)

	span.SetAttributes(
		attribute.Float64("cognitive.drift.score", overall),
		attribute.Bool("cognitive.drift.detected", m.DriftDetected),
		attribute.Int("cognitive.drift.features_compared", len(data.FeatureDrift)),
		attribute.Int("cognitive.drift.change_points", len(concept.ChangePoints)),
	)

	return m, nil
}

// analyzeDataDrift compares reference and current feature distributions.
// Features present on only one side are skipped. Iteration follows the
// reference slice order so the output is deterministic.
func (d *DriftDetector) analyzeDataDrift(reference, current []FeatureDistribution) DataDriftResult {
	if len(reference) == 0 || len(current) == 0 {
		return DataDriftResult{}
	}

	currentByName := make(map[string]FeatureDistribution, len(current))
	for _, c := range current {
		currentByName[c.FeatureName] = c
	}

	var (
		features       []FeatureDriftResult
		scoreSum       float64
		anySignificant bool
	)
	for _, ref := range reference {
		cur, ok := currentByName[ref.FeatureName]
		if !ok {
			continue
		}

		stat, p := ksApproximation(ref, cur)
		significant := p < significanceLevel

		// PSI is the per-feature drift score whenever matched histogram
		// buckets exist; without histograms the KS statistic stands in so
		// a pure mean/stddev shift still registers.
		score, havePSI := populationStabilityIndex(ref.Histogram, cur.Histogram)
		if !havePSI {
			score = stat
		}

		features = append(features, FeatureDriftResult{
			FeatureName:   ref.FeatureName,
			DriftScore:    score,
			KSStatistic:   stat,
			PValue:        p,
			IsSignificant: significant,
		})
		scoreSum += score
		if significant {
			anySignificant = true
		}
	}

	if len(features) == 0 {
		return DataDriftResult{}
	}

	aggregate := clamp01(scoreSum / float64(len(features)))
	return DataDriftResult{
		Score:        aggregate,
		Detected:     anySignificant || aggregate > d.threshold,
		FeatureDrift: features,
	}
}

// ksApproximation is a two-moment approximation of the Kolmogorov-Smirnov
// statistic: the mean shift and spread shift relative to the reference
// standard deviation, averaged and capped at 1. The derived p-value is
// 1-statistic with a 0.001 floor.
func ksApproximation(ref, cur FeatureDistribution) (statistic, pValue float64) {
	refStd := math.Max(ref.StdDev, stdDevFloor)
	meanShift := math.Abs(cur.Mean-ref.Mean) / refStd
	spreadShift := math.Abs(cur.StdDev-ref.StdDev) / refStd

	statistic = math.Min(1, (meanShift+spreadShift)/2)
	pValue = math.Max(pValueFloor, 1-statistic)
	return statistic, pValue
}

// populationStabilityIndex computes PSI over matched histogram buckets.
// Bucket proportions are floored at 0.001 to avoid log(0); the absolute
// PSI is clamped to [0,1]. The second return is false when either side
// lacks usable buckets.
func populationStabilityIndex(ref, cur []float64) (float64, bool) {
	buckets := len(ref)
	if len(cur) < buckets {
		buckets = len(cur)
	}
	if buckets == 0 {
		return 0, false
	}

	var refTotal, curTotal float64
	for i := 0; i < buckets; i++ {
		refTotal += ref[i]
		curTotal += cur[i]
	}
	if refTotal <= 0 || curTotal <= 0 {
		return 0, false
	}

	var psi float64
	for i := 0; i < buckets; i++ {
		refPct := math.Max(psiFloor, ref[i]/refTotal)
		curPct := math.Max(psiFloor, cur[i]/curTotal)
		psi += (curPct - refPct) * math.Log(curPct/refPct)
	}
	return clamp01(math.Abs(psi)), true
}

// analyzeConceptDrift runs sliding-window change-point detection over the
// prediction confidence stream. After a detection the scan skips a full
// window to avoid overlapping change points for the same shift.
func (d *DriftDetector) analyzeConceptDrift(preds []PredictionRecord) ConceptDriftResult {
	n := len(preds)
	if n < conceptMinWindow {
		return ConceptDriftResult{}
	}

	confidences := make([]float64, n)
	for i, p := range preds {
		confidences[i] = p.Confidence
	}

	window := n / 10
	if window < conceptMinWindow {
		window = conceptMinWindow
	}

	var points []ChangePoint
	for i := window; i+window <= n; {
		before := Mean(confidences[i-window : i])
		after := Mean(confidences[i : i+window])
		change := math.Abs(after - before)
		if change > conceptChangeThreshold {
			points = append(points, ChangePoint{
				Index:      i,
				Timestamp:  preds[i].Timestamp,
				MeanBefore: before,
				MeanAfter:  after,
				Magnitude:  change,
				Confidence: math.Min(1, change*conceptConfidenceGain),
			})
			i += window
			continue
		}
		i++
	}

	if len(points) == 0 {
		return ConceptDriftResult{}
	}

	var confidenceSum float64
	for _, p := range points {
		confidenceSum += p.Confidence
	}
	score := math.Min(1, confidenceSum/float64(len(points)))

	return ConceptDriftResult{Score: score, Detected: true, ChangePoints: points}
}

// analyzePredictionDrift splits the prediction stream at its midpoint and
// compares the confidence means of the two halves.
func (d *DriftDetector) analyzePredictionDrift(preds []PredictionRecord) PredictionDriftResult {
	n := len(preds)
	if n < 2 {
		return PredictionDriftResult{}
	}

	confidences := make([]float64, n)
	for i, p := range preds {
		confidences[i] = p.Confidence
	}

	half := n / 2
	before := Mean(confidences[:half])
	after := Mean(confidences[half:])
	shift := math.Abs(after - before)
	score := math.Min(1, shift*2)

	return PredictionDriftResult{
		Score:           score,
		Detected:        score > d.threshold,
		ConfidenceShift: shift,
		MeanBefore:      before,
		MeanAfter:       after,
	}
}

// driftConfidence estimates how much evidence backs the overall drift
// score: the share of significant features, the mean change-point
// confidence, and the prediction shift magnitude, combined with the same
// weights as the score itself.
func driftConfidence(data DataDriftResult, concept ConceptDriftResult, prediction PredictionDriftResult) float64 {
	var dataConf float64
	if n := len(data.FeatureDrift); n > 0 {
		significant := 0
		for _, f := range data.FeatureDrift {
			if f.IsSignificant {
				significant++
			}
		}
		dataConf = float64(significant) / float64(n)
	}

	return clamp01(dataDriftWeight*dataConf +
		conceptDriftWeight*concept.Score +
		predictionDriftWeight*prediction.Score)
}

// recommend maps the drift assessment onto deterministic operator actions.
func (d *DriftDetector) recommend(m *DriftMetrics) []DriftRecommendation {
	if !m.DriftDetected && !m.DataDrift.Detected && !m.ConceptDrift.Detected && !m.PredictionDrift.Detected {
		return []DriftRecommendation{{
			Action:   "monitor",
			Priority: SeverityLow,
			Reason:   "no material drift detected, continue routine monitoring",
		}}
	}

	var recs []DriftRecommendation
	if m.DataDrift.Detected {
		recs = append(recs, DriftRecommendation{
			Action:   "investigate_features",
			Priority: flagSeverity(severityForScore(m.DataDrift.Score, driftSeverityEdges)),
			Reason:   "input distribution shifted for " + significantFeatureNames(m.DataDrift.FeatureDrift),
		})
	}
	if m.ConceptDrift.Detected {
		recs = append(recs, DriftRecommendation{
			Action:   "retrain",
			Priority: flagSeverity(severityForScore(m.ConceptDrift.Score, driftSeverityEdges)),
			Reason: fmt.Sprintf("%d change point(s) detected in prediction confidence",
				len(m.ConceptDrift.ChangePoints)),
		})
	}
	if m.PredictionDrift.Detected {
		recs = append(recs, DriftRecommendation{
			Action:   "alert",
			Priority: SeverityMedium,
			Reason: fmt.Sprintf("prediction confidence distribution shifted by %.2f",
				m.PredictionDrift.ConfidenceShift),
		})
	}

	// Overall score can cross the threshold without any single component
	// detecting on its own.
	if len(recs) == 0 {
		recs = append(recs, DriftRecommendation{
			Action:   "alert",
			Priority: flagSeverity(m.OverallDriftScore.Severity),
			Reason:   fmt.Sprintf("combined drift score %.2f exceeds threshold %.2f", m.OverallDriftScore.Value, d.threshold),
		})
	}
	return recs
}

// significantFeatureNames renders a bounded, comma-separated list of the
// features flagged significant, for recommendation messages.
func significantFeatureNames(features []FeatureDriftResult) string {
	var names []string
	for _, f := range features {
		if f.IsSignificant {
			names = append(names, f.FeatureName)
		}
	}
	if len(names) == 0 {
		return "the aggregate input distribution"
	}

	const maxNamed = 5
	if len(names) > maxNamed {
		return fmt.Sprintf("%s and %d more",
			strings.Join(names[:maxNamed], ", "), len(names)-maxNamed)
	}
	return strings.Join(names, ", ")
}
