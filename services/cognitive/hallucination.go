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
	"regexp"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ----------------------------------------------------------------------------
// Hallucination detection
// ----------------------------------------------------------------------------

// Component weights for the overall hallucination risk.
const (
	groundingRiskWeight   = 0.3
	factualityRiskWeight  = 0.3
	uncertaintyRiskWeight = 0.2
	instanceRiskWeight    = 0.2
)

const (
	// hallucinationConfidenceBar flags outputs below this confidence as
	// potential hallucinations.
	hallucinationConfidenceBar = 0.5

	// fabricationBand and factualErrorBand split flagged outputs into
	// hallucination types by confidence.
	fabricationBand  = 0.3
	factualErrorBand = 0.4

	// instanceCountNormalizer converts an instance count into a [0,1]
	// risk contribution.
	instanceCountNormalizer = 10

	// epistemicGain scales confidence spread into epistemic uncertainty.
	epistemicGain = 2.0

	// contradictionScale derives a contradiction rate from the mean
	// confidence shortfall.
	contradictionScale = 0.5

	// detailExcerptLimit bounds the output excerpt carried on an
	// instance, in runes.
	detailExcerptLimit = 120
)

// Placeholder constants standing in for a real embedding/NLI pipeline.
// They are deliberate stand-ins per the engine contract; a production
// deployment substitutes model-backed scores here.
const (
	simulatedContextRelevance       = 0.82
	simulatedContextCoverage        = 0.78
	simulatedFactualConsistency     = 0.85
	simulatedVerifiedClaimAccuracy  = 0.80
	simulatedUncertaintyCalibration = 0.75
)

// factualClaimPatterns match language that asserts verifiable facts. An
// output with no source citations that matches any of these patterns is
// flagged as an unsupported claim.
var factualClaimPatterns = []*regexp.Regexp{
	// Attribution phrasing without an actual citation.
	regexp.MustCompile(`(?i)\baccording to\b`),

	// Appeals to research or expertise.
	regexp.MustCompile(`(?i)\bstudies (?:show|suggest|indicate)\b`),
	regexp.MustCompile(`(?i)\bresearch (?:shows|suggests|indicates)\b`),
	regexp.MustCompile(`(?i)\bexperts (?:say|agree|believe)\b`),

	// Quantified claims.
	regexp.MustCompile(`\b\d+(?:\.\d+)?%`),

	// Specific year references.
	regexp.MustCompile(`\b(?:19|20)\d{2}\b`),

	// Concrete entity facts.
	regexp.MustCompile(`(?i)\bwas founded\b`),
	regexp.MustCompile(`(?i)\bis located\b`),
	regexp.MustCompile(`(?i)\bwas invented\b`),
}

// HallucinationDetector estimates the risk that generated outputs are
// unfounded, contradictory, or unverifiable.
//
// The detector is stateless and safe for concurrent use. Instance IDs are
// freshly generated UUIDs; everything else in the output is a
// deterministic function of the input.
type HallucinationDetector struct{}

// NewHallucinationDetector builds a HallucinationDetector.
func NewHallucinationDetector() *HallucinationDetector {
	return &HallucinationDetector{}
}

// Detect computes grounding, factuality, uncertainty, and per-output
// hallucination instances.
//
// Description:
//
//	Grounding measures source attribution across outputs. Factuality
//	combines placeholder consistency metrics with a confidence-derived
//	contradiction rate. Uncertainty decomposes into epistemic (spread)
//	and aleatoric (confidence shortfall) components. Individual outputs
//	are flagged by confidence band and by source-less factual-claim
//	language. The overall risk combines all four signals.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	in - Input bundle. Must not be nil. Without generative outputs the
//	     result is fully zeroed: there is nothing to assess.
//
// Outputs:
//
//	*HallucinationMetrics - Complete hallucination assessment.
//	error - ErrNilContext or ErrNilInput on programmer misuse only.
func (h *HallucinationDetector) Detect(ctx context.Context, in *InputBundle) (*HallucinationMetrics, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if in == nil {
		return nil, ErrNilInput
	}

	_, span := tracer.Start(ctx, "cognitive.HallucinationDetector.Detect")
	defer span.End()

	if len(in.Outputs) == 0 {
		return &HallucinationMetrics{
			OverallRisk: SeverityScore{Severity: SeverityInfo},
		}, nil
	}

	m := &HallucinationMetrics{
		Grounding:   analyzeGrounding(in.Outputs),
		Factuality:  analyzeFactuality(in.Outputs),
		Uncertainty: analyzeUncertainty(in.Predictions, in.Outputs),
		Instances:   h.flagInstances(in.Outputs),
	}

	instanceLoad := math.Min(1, float64(len(m.Instances))/instanceCountNormalizer)
	risk := clamp01(groundingRiskWeight*(1-m.Grounding.Score) +
		factualityRiskWeight*(1-m.Factuality.Score) +
		uncertaintyRiskWeight*m.Uncertainty.Total +
		instanceRiskWeight*instanceLoad)

	m.OverallRisk = SeverityScore{
		Value:      risk,
		Severity:   severityForScore(risk, hallucinationSeverityEdges),
		Confidence: math.Min(1, float64(len(in.Outputs))/instanceCountNormalizer),
	}

	span.SetAttributes(
		attribute.Float64("cognitive.hallucination.risk", risk),
		attribute.Int("cognitive.hallucination.instances", len(m.Instances)),
	)

	return m, nil
}

// analyzeGrounding measures how well outputs are supported by cited
// sources. Callers guarantee at least one output.
func analyzeGrounding(outputs []GenerativeOutput) GroundingMetrics {
	n := float64(len(outputs))

	var withSources, sourcedConfidenceSum, confidenceSum float64
	for _, out := range outputs {
		confidenceSum += out.Confidence
		if len(out.Sources) > 0 {
			withSources++
			sourcedConfidenceSum += out.Confidence
		}
	}

	m := GroundingMetrics{
		AttributionScore: withSources / n,
		Faithfulness:     confidenceSum / n,
		ContextRelevance: simulatedContextRelevance,
		ContextCoverage:  simulatedContextCoverage,
	}
	if withSources > 0 {
		m.CitationAccuracy = sourcedConfidenceSum / withSources
	}
	m.Score = clamp01((m.AttributionScore + m.CitationAccuracy +
		m.Faithfulness + m.ContextRelevance) / 4)
	return m
}

// analyzeFactuality combines placeholder consistency metrics with a
// contradiction rate derived from the mean confidence shortfall.
func analyzeFactuality(outputs []GenerativeOutput) FactualityMetrics {
	confidences := make([]float64, len(outputs))
	for i, out := range outputs {
		confidences[i] = out.Confidence
	}

	contradiction := clamp01((1 - Mean(confidences)) * contradictionScale)
	return FactualityMetrics{
		Consistency:           simulatedFactualConsistency,
		ContradictionRate:     contradiction,
		VerifiedClaimAccuracy: simulatedVerifiedClaimAccuracy,
		Score: clamp01((simulatedFactualConsistency +
			(1 - contradiction) +
			simulatedVerifiedClaimAccuracy) / 3),
	}
}

// analyzeUncertainty decomposes uncertainty over the combined confidence
// stream of predictions and outputs. Total is the Euclidean combination,
// clamped to keep the [0,1] invariant.
func analyzeUncertainty(preds []PredictionRecord, outputs []GenerativeOutput) UncertaintyMetrics {
	confidences := make([]float64, 0, len(preds)+len(outputs))
	for _, p := range preds {
		confidences = append(confidences, p.Confidence)
	}
	for _, out := range outputs {
		confidences = append(confidences, out.Confidence)
	}
	if len(confidences) == 0 {
		return UncertaintyMetrics{}
	}

	epistemic := math.Min(1, epistemicGain*StdDev(confidences))
	aleatoric := clamp01(1 - Mean(confidences))

	return UncertaintyMetrics{
		Epistemic:   epistemic,
		Aleatoric:   aleatoric,
		Total:       math.Min(1, math.Sqrt(epistemic*epistemic+aleatoric*aleatoric)),
		Calibration: simulatedUncertaintyCalibration,
	}
}

// flagInstances flags individual outputs: low-confidence generations by
// confidence band, and source-less outputs containing factual-claim
// language. An output can earn both flags.
func (h *HallucinationDetector) flagInstances(outputs []GenerativeOutput) []HallucinationInstance {
	var instances []HallucinationInstance
	for _, out := range outputs {
		if out.Confidence < hallucinationConfidenceBar {
			typ := classifyByConfidence(out.Confidence)
			instances = append(instances, HallucinationInstance{
				ID:         uuid.NewString(),
				OutputID:   out.ID,
				Timestamp:  out.Timestamp,
				Type:       typ,
				Confidence: out.Confidence,
				Severity:   instanceSeverity(typ),
				Detail: fmt.Sprintf("low-confidence generation (%.2f): %s",
					out.Confidence, excerpt(out.Output)),
			})
		}

		if len(out.Sources) == 0 {
			if match := matchFactualClaim(out.Output); match != "" {
				instances = append(instances, HallucinationInstance{
					ID:         uuid.NewString(),
					OutputID:   out.ID,
					Timestamp:  out.Timestamp,
					Type:       HallucinationUnsupportedClaim,
					Confidence: out.Confidence,
					Severity:   instanceSeverity(HallucinationUnsupportedClaim),
					Detail: fmt.Sprintf("factual claim %q lacks source attribution: %s",
						match, excerpt(out.Output)),
				})
			}
		}
	}
	return instances
}

// classifyByConfidence maps a sub-bar confidence onto a hallucination
// type.
func classifyByConfidence(confidence float64) HallucinationType {
	switch {
	case confidence < fabricationBand:
		return HallucinationFabrication
	case confidence < factualErrorBand:
		return HallucinationFactualError
	default:
		return HallucinationUnsupportedClaim
	}
}

// instanceSeverity assigns flag severity by hallucination type.
func instanceSeverity(t HallucinationType) Severity {
	switch t {
	case HallucinationFabrication:
		return SeverityHigh
	case HallucinationFactualError:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// matchFactualClaim returns the first factual-claim fragment found in
// text, or "" when none match. Patterns are tried in declaration order so
// the result is deterministic.
func matchFactualClaim(text string) string {
	for _, pattern := range factualClaimPatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// excerpt bounds text for instance details.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= detailExcerptLimit {
		return text
	}
	return string(runes[:detailExcerptLimit]) + "..."
}
