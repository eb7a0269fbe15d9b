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

// Severity is a discrete risk label derived from a continuous normalized
// score via fixed, per-metric bucket edges.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRanks orders severities for comparisons. Higher is worse.
var severityRanks = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal position of the severity, with info lowest and
// critical highest. Unknown severities rank as info.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// AtLeast reports whether s is as severe as other or more so.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// TrendDirection describes the direction of a metric over time. Volatile
// is emitted only for the aggregate trust trend, when directional signals
// disagree.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendVolatile   TrendDirection = "volatile"
)

// severityEdges holds the lower bound of each severity bucket. A score
// below the Low edge maps to info. Edges must be strictly descending from
// Critical to Low for severityForScore to be monotone.
type severityEdges struct {
	Critical float64
	High     float64
	Medium   float64
	Low      float64
}

var (
	// driftSeverityEdges buckets the overall drift score.
	driftSeverityEdges = severityEdges{Critical: 0.8, High: 0.6, Medium: 0.4, Low: 0.2}

	// hallucinationSeverityEdges buckets the overall hallucination risk.
	hallucinationSeverityEdges = severityEdges{Critical: 0.7, High: 0.5, Medium: 0.3, Low: 0.15}

	// degradationSeverityEdges buckets the overall degradation score.
	// Degradation percentages are small relative to [0,1] scores, so the
	// edges sit much lower than the other metrics.
	degradationSeverityEdges = severityEdges{Critical: 0.3, High: 0.2, Medium: 0.1, Low: 0.05}
)

// severityForScore maps a normalized score onto a severity bucket using
// the given edges. The mapping is a step function, monotonically
// non-decreasing in score.
func severityForScore(score float64, edges severityEdges) Severity {
	switch {
	case score >= edges.Critical:
		return SeverityCritical
	case score >= edges.High:
		return SeverityHigh
	case score >= edges.Medium:
		return SeverityMedium
	case score >= edges.Low:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// flagSeverity remaps info to low. Risk flags exist because a threshold
// was crossed, so the weakest severity a flag may carry is low.
func flagSeverity(s Severity) Severity {
	if s == SeverityInfo {
		return SeverityLow
	}
	return s
}
