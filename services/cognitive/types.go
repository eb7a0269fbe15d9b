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
	"time"
)

// ----------------------------------------------------------------------------
// Input data model
// ----------------------------------------------------------------------------

// PredictionRecord is a single scored model prediction.
//
// Confidence must lie in [0,1]. ID correlates the prediction with its
// GroundTruthRecord, when one exists.
type PredictionRecord struct {
	ID             string    `json:"id" validate:"required"`
	Timestamp      time.Time `json:"timestamp"`
	Confidence     float64   `json:"confidence" validate:"finite,gte=0,lte=1"`
	PredictedLabel string    `json:"predictedLabel"`
}

// FeatureDistribution summarizes the observed distribution of one input
// feature over a data window. Reference and current sets are matched by
// FeatureName; features present on only one side are ignored for drift.
type FeatureDistribution struct {
	FeatureName string    `json:"featureName" validate:"required"`
	Mean        float64   `json:"mean" validate:"finite"`
	StdDev      float64   `json:"stdDev" validate:"finite,gte=0"`
	Min         float64   `json:"min" validate:"finite"`
	Max         float64   `json:"max" validate:"finite"`
	Histogram   []float64 `json:"histogram,omitempty" validate:"dive,finite,gte=0"`
}

// GroundTruthRecord is the observed outcome for one prediction.
type GroundTruthRecord struct {
	PredictionID string `json:"predictionId" validate:"required"`
	ActualLabel  string `json:"actualLabel"`
	Correct      bool   `json:"correct"`
}

// GenerativeOutput is one generated response from the model, with any
// source citations the generation pipeline attached.
type GenerativeOutput struct {
	ID         string    `json:"id" validate:"required"`
	Timestamp  time.Time `json:"timestamp"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Sources    []string  `json:"sources,omitempty"`
	Confidence float64   `json:"confidence" validate:"finite,gte=0,lte=1"`
}

// PerformancePoint is one sample of operational performance metrics.
// Latencies are milliseconds; Throughput is requests per second.
type PerformancePoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Accuracy   float64   `json:"accuracy" validate:"finite,gte=0,lte=1"`
	LatencyP50 float64   `json:"latencyP50" validate:"finite,gte=0"`
	LatencyP99 float64   `json:"latencyP99" validate:"finite,gte=0"`
	ErrorRate  float64   `json:"errorRate" validate:"finite,gte=0,lte=1"`
	Throughput float64   `json:"throughput" validate:"finite,gte=0"`
}

// InputBundle carries every operational signal for one model at one
// evaluation instant. All slices may be empty; nil is treated as empty.
//
// Sequences are expected in timestamp order. The engine re-sorts
// defensively on a copy, so callers retain ownership of the bundle.
type InputBundle struct {
	Predictions        []PredictionRecord    `json:"predictions,omitempty" validate:"dive"`
	ReferenceData      []FeatureDistribution `json:"referenceData,omitempty" validate:"dive"`
	CurrentData        []FeatureDistribution `json:"currentData,omitempty" validate:"dive"`
	GroundTruth        []GroundTruthRecord   `json:"groundTruth,omitempty" validate:"dive"`
	Outputs            []GenerativeOutput    `json:"outputs,omitempty" validate:"dive"`
	PerformanceHistory []PerformancePoint    `json:"performanceHistory,omitempty" validate:"dive"`
}

// ----------------------------------------------------------------------------
// Shared output primitives
// ----------------------------------------------------------------------------

// SeverityScore pairs a normalized score in [0,1] with its severity bucket
// and a confidence estimate for the score itself, so downstream consumers
// never need to re-derive severity thresholds.
type SeverityScore struct {
	Value      float64  `json:"value"`
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
}

// ----------------------------------------------------------------------------
// Drift results
// ----------------------------------------------------------------------------

// FeatureDriftResult is the per-feature outcome of data drift analysis.
//
// DriftScore is the Population Stability Index when matched histogram
// buckets exist on both sides, otherwise the KS-approximation statistic.
type FeatureDriftResult struct {
	FeatureName   string  `json:"featureName"`
	DriftScore    float64 `json:"driftScore"`
	KSStatistic   float64 `json:"ksStatistic"`
	PValue        float64 `json:"pValue"`
	IsSignificant bool    `json:"isSignificant"`
}

// ChangePoint marks a detected shift in the prediction confidence stream.
type ChangePoint struct {
	Index      int       `json:"index"`
	Timestamp  time.Time `json:"timestamp"`
	MeanBefore float64   `json:"meanBefore"`
	MeanAfter  float64   `json:"meanAfter"`
	Magnitude  float64   `json:"magnitude"`
	Confidence float64   `json:"confidence"`
}

// DataDriftResult aggregates per-feature distribution shift.
type DataDriftResult struct {
	Score        float64              `json:"score"`
	Detected     bool                 `json:"detected"`
	FeatureDrift []FeatureDriftResult `json:"featureDrift,omitempty"`
}

// ConceptDriftResult reports change points in prediction confidence.
type ConceptDriftResult struct {
	Score        float64       `json:"score"`
	Detected     bool          `json:"detected"`
	ChangePoints []ChangePoint `json:"changePoints,omitempty"`
}

// PredictionDriftResult reports a split-half confidence distribution shift.
type PredictionDriftResult struct {
	Score           float64 `json:"score"`
	Detected        bool    `json:"detected"`
	ConfidenceShift float64 `json:"confidenceShift"`
	MeanBefore      float64 `json:"meanBefore"`
	MeanAfter       float64 `json:"meanAfter"`
}

// DriftRecommendation is one deterministic follow-up action for operators.
type DriftRecommendation struct {
	Action   string   `json:"action"`
	Priority Severity `json:"priority"`
	Reason   string   `json:"reason"`
}

// DriftMetrics is the full output of the DriftDetector.
type DriftMetrics struct {
	DataDrift         DataDriftResult       `json:"dataDrift"`
	ConceptDrift      ConceptDriftResult    `json:"conceptDrift"`
	PredictionDrift   PredictionDriftResult `json:"predictionDrift"`
	OverallDriftScore SeverityScore         `json:"overallDriftScore"`
	DriftDetected     bool                  `json:"driftDetected"`
	Recommendations   []DriftRecommendation `json:"recommendations,omitempty"`
}

// ----------------------------------------------------------------------------
// Reliability results
// ----------------------------------------------------------------------------

// CalibrationBin is one equal-width confidence bucket.
type CalibrationBin struct {
	LowerBound    float64 `json:"lowerBound"`
	UpperBound    float64 `json:"upperBound"`
	AvgConfidence float64 `json:"avgConfidence"`
	Accuracy      float64 `json:"accuracy"`
	Count         int     `json:"count"`
}

// CalibrationMetrics quantifies the gap between predicted confidence and
// empirical accuracy.
//
// Overconfidence and Underconfidence are population-weighted sums of the
// positive and negative bin gaps respectively, so their sum equals ECE.
type CalibrationMetrics struct {
	ECE             float64          `json:"ece"`
	MCE             float64          `json:"mce"`
	BrierScore      float64          `json:"brierScore"`
	Overconfidence  float64          `json:"overconfidence"`
	Underconfidence float64          `json:"underconfidence"`
	Score           float64          `json:"score"`
	Bins            []CalibrationBin `json:"bins,omitempty"`
}

// VersionDelta captures the change between the first and last observed
// records: prediction confidence and performance-history accuracy.
type VersionDelta struct {
	ConfidenceDelta float64 `json:"confidenceDelta"`
	AccuracyDelta   float64 `json:"accuracyDelta"`
}

// StabilityMetrics quantifies temporal behavior stability.
//
// PerturbationSensitivity is a variance-derived proxy, not true
// perturbation testing.
type StabilityMetrics struct {
	TemporalVariance        float64      `json:"temporalVariance"`
	OutputConsistency       float64      `json:"outputConsistency"`
	PerturbationSensitivity float64      `json:"perturbationSensitivity"`
	VersionDelta            VersionDelta `json:"versionDelta"`
	Score                   float64      `json:"score"`
}

// ConsistencyMetrics quantifies determinism of model behavior.
// VarianceAcrossRuns and SemanticConsistency are placeholder constants.
type ConsistencyMetrics struct {
	Determinism         float64 `json:"determinism"`
	VarianceAcrossRuns  float64 `json:"varianceAcrossRuns"`
	SemanticConsistency float64 `json:"semanticConsistency"`
	Score               float64 `json:"score"`
}

// RobustnessMetrics quantifies tolerance to adverse input conditions.
// AdversarialResistance and EdgeCasePerformance are placeholder constants.
type RobustnessMetrics struct {
	AdversarialResistance      float64 `json:"adversarialResistance"`
	EdgeCasePerformance        float64 `json:"edgeCasePerformance"`
	NoiseTolerance             float64 `json:"noiseTolerance"`
	DistributionShiftTolerance float64 `json:"distributionShiftTolerance"`
	Score                      float64 `json:"score"`
}

// ReliabilityMetrics is the full output of the ReliabilityAnalyzer.
type ReliabilityMetrics struct {
	Calibration        CalibrationMetrics `json:"calibration"`
	Stability          StabilityMetrics   `json:"stability"`
	Consistency        ConsistencyMetrics `json:"consistency"`
	Robustness         RobustnessMetrics  `json:"robustness"`
	OverallReliability float64            `json:"overallReliability"`
	Trend              TrendDirection     `json:"trend"`
}

// ----------------------------------------------------------------------------
// Hallucination results
// ----------------------------------------------------------------------------

// HallucinationType classifies a flagged output.
type HallucinationType string

const (
	// HallucinationFabrication marks very low confidence generations.
	HallucinationFabrication HallucinationType = "fabrication"

	// HallucinationFactualError marks low confidence generations.
	HallucinationFactualError HallucinationType = "factual_error"

	// HallucinationUnsupportedClaim marks moderate-confidence generations
	// and source-less outputs containing factual-claim language.
	HallucinationUnsupportedClaim HallucinationType = "unsupported_claim"
)

// GroundingMetrics quantifies how well outputs are supported by sources.
// ContextRelevance and ContextCoverage are placeholder constants; Score is
// the mean of the four primary sub-scores (attribution, citation accuracy,
// faithfulness, context relevance). Coverage is diagnostic only.
type GroundingMetrics struct {
	AttributionScore float64 `json:"attributionScore"`
	CitationAccuracy float64 `json:"citationAccuracy"`
	Faithfulness     float64 `json:"faithfulness"`
	ContextRelevance float64 `json:"contextRelevance"`
	ContextCoverage  float64 `json:"contextCoverage"`
	Score            float64 `json:"score"`
}

// FactualityMetrics quantifies factual soundness of generated content.
// Consistency and VerifiedClaimAccuracy are placeholder constants;
// ContradictionRate derives from mean output confidence.
type FactualityMetrics struct {
	Consistency           float64 `json:"consistency"`
	ContradictionRate     float64 `json:"contradictionRate"`
	VerifiedClaimAccuracy float64 `json:"verifiedClaimAccuracy"`
	Score                 float64 `json:"score"`
}

// UncertaintyMetrics decomposes predictive uncertainty.
// Calibration is a placeholder constant.
type UncertaintyMetrics struct {
	Epistemic   float64 `json:"epistemic"`
	Aleatoric   float64 `json:"aleatoric"`
	Total       float64 `json:"total"`
	Calibration float64 `json:"calibration"`
}

// HallucinationInstance is one flagged output.
type HallucinationInstance struct {
	ID         string            `json:"id"`
	OutputID   string            `json:"outputId"`
	Timestamp  time.Time         `json:"timestamp"`
	Type       HallucinationType `json:"type"`
	Confidence float64           `json:"confidence"`
	Severity   Severity          `json:"severity"`
	Detail     string            `json:"detail"`
}

// HallucinationMetrics is the full output of the HallucinationDetector.
type HallucinationMetrics struct {
	Grounding   GroundingMetrics        `json:"grounding"`
	Factuality  FactualityMetrics       `json:"factuality"`
	Uncertainty UncertaintyMetrics      `json:"uncertainty"`
	Instances   []HallucinationInstance `json:"instances,omitempty"`
	OverallRisk SeverityScore           `json:"overallRisk"`
}

// ----------------------------------------------------------------------------
// Degradation results
// ----------------------------------------------------------------------------

// MetricKind identifies a tracked performance metric.
type MetricKind string

const (
	MetricAccuracy    MetricKind = "accuracy"
	MetricLatency     MetricKind = "latency"
	MetricThroughput  MetricKind = "throughput"
	MetricReliability MetricKind = "reliability"
)

// MetricDegradation is the per-metric outcome of degradation tracking.
//
// DegradationPercent is relative loss against the historical baseline,
// clamped to be non-negative. For latency the comparison is inverted so
// that a positive percentage always means "worse".
type MetricDegradation struct {
	Metric             MetricKind     `json:"metric"`
	BaselineValue      float64        `json:"baselineValue"`
	CurrentValue       float64        `json:"currentValue"`
	DegradationPercent float64        `json:"degradationPercent"`
	Slope              float64        `json:"slope"`
	Trend              TrendDirection `json:"trend"`
	PValue             float64        `json:"pValue"`
	IsSignificant      bool           `json:"isSignificant"`
}

// DegradationProjection extrapolates the accuracy trend to the configured
// reliability threshold. DaysToThreshold is nil when the trend is not
// degrading.
type DegradationProjection struct {
	Available       bool     `json:"available"`
	DaysToThreshold *float64 `json:"daysToThreshold,omitempty"`
	Basis           string   `json:"basis,omitempty"`
}

// DegradationAction is one recommended operator response.
type DegradationAction struct {
	Action  string   `json:"action"`
	Urgency Severity `json:"urgency"`
	Reason  string   `json:"reason"`
}

// DegradationMetrics is the full output of the DegradationTracker.
type DegradationMetrics struct {
	Metrics            []MetricDegradation   `json:"metrics,omitempty"`
	OverallDegradation SeverityScore         `json:"overallDegradation"`
	Projection         DegradationProjection `json:"projection"`
	RecommendedActions []DegradationAction   `json:"recommendedActions,omitempty"`
}

// ----------------------------------------------------------------------------
// Trust and snapshot
// ----------------------------------------------------------------------------

// TrustIndicators fuses the four risk dimensions into trust components and
// one weighted overall trust score.
type TrustIndicators struct {
	OverallTrust     float64        `json:"overallTrust"`
	DriftTrust       float64        `json:"driftTrust"`
	ReliabilityTrust float64        `json:"reliabilityTrust"`
	FactualityTrust  float64        `json:"factualityTrust"`
	PerformanceTrust float64        `json:"performanceTrust"`
	Trend            TrendDirection `json:"trend"`
}

// RiskFlag is raised for each risk dimension whose score crosses its
// configured threshold. Flag severity is never "info"; the engine remaps
// info to low before emitting.
type RiskFlag struct {
	ID        string    `json:"id"`
	Dimension string    `json:"dimension"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	RaisedAt  time.Time `json:"raisedAt"`
}

// Risk flag dimensions.
const (
	DimensionDrift         = "drift"
	DimensionReliability   = "reliability"
	DimensionHallucination = "hallucination"
	DimensionDegradation   = "degradation"
)

// Snapshot is one immutable cognitive health assessment. It is created
// fresh on every engine call and has no identity beyond (ModelID,
// Timestamp); it is never updated in place.
type Snapshot struct {
	ModelID         string               `json:"modelId"`
	Timestamp       time.Time            `json:"timestamp"`
	Drift           DriftMetrics         `json:"drift"`
	Reliability     ReliabilityMetrics   `json:"reliability"`
	Hallucination   HallucinationMetrics `json:"hallucination"`
	Degradation     DegradationMetrics   `json:"degradation"`
	TrustIndicators TrustIndicators      `json:"trustIndicators"`
	RiskFlags       []RiskFlag           `json:"riskFlags,omitempty"`
}
