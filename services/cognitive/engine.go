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
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ----------------------------------------------------------------------------
// Engine orchestration
// ----------------------------------------------------------------------------

const (
	// trendStrongSignal is the mean direction signal beyond which the
	// trust trend reads increasing or decreasing.
	trendStrongSignal = 0.3

	// trendQuietSignal is the mean direction signal magnitude below which
	// the trust trend reads stable. Between quiet and strong the trend is
	// volatile.
	trendQuietSignal = 0.1
)

// Engine orchestrates the four analyzers and fuses their results into an
// immutable Snapshot.
//
// The engine holds no mutable state between calls; a single Engine is
// safe for concurrent use across goroutines and models.
type Engine struct {
	cfg           EngineConfig
	drift         *DriftDetector
	reliability   *ReliabilityAnalyzer
	hallucination *HallucinationDetector
	degradation   *DegradationTracker

	logger *slog.Logger
	now    func() time.Time
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithLogger sets the logger for assessment lifecycle events. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithNowFunc overrides the clock used for the snapshot timestamp and
// flag raise times. With a fixed clock, repeat calls over the same bundle
// produce identical snapshots apart from generated flag IDs; intended for
// tests and for replaying historical bundles.
func WithNowFunc(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine from the given configuration.
//
// Description:
//
//	The configuration is normalized (zero fields replaced with defaults)
//	and validated once here; analyzers constructed from it never
//	re-validate. A zero-value EngineConfig yields the default engine.
//
// Inputs:
//
//	cfg - Engine configuration. Zero fields take defaults.
//	opts - Optional overrides (logger, clock).
//
// Outputs:
//
//	*Engine - Ready-to-use engine.
//	error - ErrInvalidConfig when validation fails.
func NewEngine(cfg EngineConfig, opts ...EngineOption) (*Engine, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:           cfg,
		drift:         NewDriftDetector(cfg),
		reliability:   NewReliabilityAnalyzer(),
		hallucination: NewHallucinationDetector(),
		degradation:   NewDegradationTracker(cfg),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// ComputeSnapshot runs one full cognitive assessment.
//
// Description:
//
//	The bundle is validated, each analyzer receives a window-filtered
//	view of it, and all four analyzers run concurrently. Their results
//	fuse into trust indicators (components weighted by the configured
//	trust weights) and one risk flag per dimension whose score crossed
//	its threshold. The returned snapshot is immutable: it is built
//	fresh on every call and never updated in place.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Must not be nil.
//	modelID - Identifier of the model under assessment. Must not be empty.
//	in - Input bundle. It may be nil, which reads as empty; the caller
//	     retains ownership, the engine works on filtered copies.
//
// Outputs:
//
//	*Snapshot - Complete assessment, every score in [0,1].
//	error - ErrNilContext, ErrEmptyModelID, or ErrInvalidInput; analyzers
//	        themselves never fail on structurally valid input.
func (e *Engine) ComputeSnapshot(ctx context.Context, modelID string, in *InputBundle) (*Snapshot, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if modelID == "" {
		return nil, ErrEmptyModelID
	}
	if in == nil {
		in = &InputBundle{}
	}
	if err := ValidateBundle(in); err != nil {
		return nil, err
	}

	ctx, span := StartAssessmentSpan(ctx, modelID, in)
	defer span.End()
	start := time.Now()

	anchor := newestTimestamp(in)
	driftIn := windowedBundle(in, anchor, e.cfg.Windows.Drift)
	reliabilityIn := windowedBundle(in, anchor, e.cfg.Windows.Reliability)
	hallucinationIn := windowedBundle(in, anchor, e.cfg.Windows.Hallucination)
	degradationIn := windowedBundle(in, anchor, e.cfg.Windows.Degradation)

	var (
		driftM         *DriftMetrics
		reliabilityM   *ReliabilityMetrics
		hallucinationM *HallucinationMetrics
		degradationM   *DegradationMetrics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := e.drift.Detect(gctx, driftIn)
		if err != nil {
			return fmt.Errorf("drift detection: %w", err)
		}
		driftM = m
		return nil
	})
	g.Go(func() error {
		m, err := e.reliability.Analyze(gctx, reliabilityIn)
		if err != nil {
			return fmt.Errorf("reliability analysis: %w", err)
		}
		reliabilityM = m
		return nil
	})
	g.Go(func() error {
		m, err := e.hallucination.Detect(gctx, hallucinationIn)
		if err != nil {
			return fmt.Errorf("hallucination detection: %w", err)
		}
		hallucinationM = m
		return nil
	})
	g.Go(func() error {
		m, err := e.degradation.Track(gctx, degradationIn)
		if err != nil {
			return fmt.Errorf("degradation tracking: %w", err)
		}
		degradationM = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ModelID:       modelID,
		Timestamp:     e.now().UTC(),
		Drift:         *driftM,
		Reliability:   *reliabilityM,
		Hallucination: *hallucinationM,
		Degradation:   *degradationM,
	}
	snap.TrustIndicators = e.fuseTrust(snap)
	snap.RiskFlags = e.raiseFlags(snap)

	SetAssessmentSpanResult(span, snap)
	RecordAssessment(ctx, snap, time.Since(start))

	e.logger.Debug("cognitive assessment complete",
		"model_id", modelID,
		"overall_trust", snap.TrustIndicators.OverallTrust,
		"risk_flags", len(snap.RiskFlags),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return snap, nil
}

// fuseTrust derives the trust components from the four dimension scores
// and combines them with the configured weights. Weights are normalized
// by their sum, which validation guarantees is positive.
func (e *Engine) fuseTrust(snap *Snapshot) TrustIndicators {
	driftTrust := clamp01(1 - snap.Drift.OverallDriftScore.Value)
	reliabilityTrust := clamp01(snap.Reliability.OverallReliability)
	factualityTrust := clamp01(snap.Hallucination.Factuality.Score)
	performanceTrust := clamp01(1 - snap.Degradation.OverallDegradation.Value)

	w := e.cfg.Weights
	overall := (w.Drift*driftTrust +
		w.Reliability*reliabilityTrust +
		w.Hallucination*factualityTrust +
		w.Degradation*performanceTrust) / w.Sum()

	return TrustIndicators{
		OverallTrust:     clamp01(overall),
		DriftTrust:       driftTrust,
		ReliabilityTrust: reliabilityTrust,
		FactualityTrust:  factualityTrust,
		PerformanceTrust: performanceTrust,
		Trend:            trustTrend(snap),
	}
}

// trustTrend fuses per-dimension direction signals into one trend. Drift
// and degradation push the signal down by their scores; the reliability
// trend contributes a full unit in its direction.
func trustTrend(snap *Snapshot) TrendDirection {
	signal := Mean([]float64{
		-snap.Drift.OverallDriftScore.Value,
		reliabilityTrendSignal(snap.Reliability.Trend),
		-snap.Degradation.OverallDegradation.Value,
	})

	switch {
	case signal >= trendStrongSignal:
		return TrendIncreasing
	case signal <= -trendStrongSignal:
		return TrendDecreasing
	case math.Abs(signal) < trendQuietSignal:
		return TrendStable
	default:
		return TrendVolatile
	}
}

// reliabilityTrendSignal maps the reliability trend onto a unit signal.
func reliabilityTrendSignal(t TrendDirection) float64 {
	switch t {
	case TrendIncreasing:
		return 1
	case TrendDecreasing:
		return -1
	default:
		return 0
	}
}

// raiseFlags emits one risk flag per dimension whose score crossed its
// configured threshold. Flag severity follows each dimension's bucket
// edges with info remapped to low: a raised flag is always actionable.
// For reliability, which scores goodness rather than badness, the
// deficit 1-overall buckets on the drift edges.
func (e *Engine) raiseFlags(snap *Snapshot) []RiskFlag {
	th := e.cfg.Thresholds
	raisedAt := snap.Timestamp

	var flags []RiskFlag
	if snap.Drift.DriftDetected {
		score := snap.Drift.OverallDriftScore
		flags = append(flags, RiskFlag{
			ID:        uuid.NewString(),
			Dimension: DimensionDrift,
			Severity:  flagSeverity(score.Severity),
			Message:   fmt.Sprintf("drift score %.2f exceeds threshold %.2f", score.Value, th.Drift),
			Value:     score.Value,
			Threshold: th.Drift,
			RaisedAt:  raisedAt,
		})
	}
	if snap.Reliability.OverallReliability < th.Reliability {
		deficit := clamp01(1 - snap.Reliability.OverallReliability)
		flags = append(flags, RiskFlag{
			ID:        uuid.NewString(),
			Dimension: DimensionReliability,
			Severity:  flagSeverity(severityForScore(deficit, driftSeverityEdges)),
			Message: fmt.Sprintf("reliability %.2f is below threshold %.2f",
				snap.Reliability.OverallReliability, th.Reliability),
			Value:     snap.Reliability.OverallReliability,
			Threshold: th.Reliability,
			RaisedAt:  raisedAt,
		})
	}
	if risk := snap.Hallucination.OverallRisk; risk.Value > th.Hallucination {
		flags = append(flags, RiskFlag{
			ID:        uuid.NewString(),
			Dimension: DimensionHallucination,
			Severity:  flagSeverity(risk.Severity),
			Message: fmt.Sprintf("hallucination risk %.2f exceeds threshold %.2f (%d flagged output(s))",
				risk.Value, th.Hallucination, len(snap.Hallucination.Instances)),
			Value:     risk.Value,
			Threshold: th.Hallucination,
			RaisedAt:  raisedAt,
		})
	}
	if deg := snap.Degradation.OverallDegradation; deg.Value > th.Degradation {
		flags = append(flags, RiskFlag{
			ID:        uuid.NewString(),
			Dimension: DimensionDegradation,
			Severity:  flagSeverity(deg.Severity),
			Message: fmt.Sprintf("performance degradation %.2f exceeds threshold %.2f",
				deg.Value, th.Degradation),
			Value:     deg.Value,
			Threshold: th.Degradation,
			RaisedAt:  raisedAt,
		})
	}
	return flags
}

// ----------------------------------------------------------------------------
// Window filtering
// ----------------------------------------------------------------------------

// newestTimestamp returns the latest timestamp across every time-stamped
// series in the bundle, or the zero time when none carry timestamps.
func newestTimestamp(in *InputBundle) time.Time {
	var newest time.Time
	for _, p := range in.Predictions {
		if p.Timestamp.After(newest) {
			newest = p.Timestamp
		}
	}
	for _, o := range in.Outputs {
		if o.Timestamp.After(newest) {
			newest = o.Timestamp
		}
	}
	for _, h := range in.PerformanceHistory {
		if h.Timestamp.After(newest) {
			newest = h.Timestamp
		}
	}
	return newest
}

// windowedBundle builds one analyzer's view of the bundle: time-stamped
// series filtered to [anchor-window, anchor] and re-sorted on copies.
//
// The anchor is the newest timestamp in the bundle, not the wall clock,
// so identical input always yields identical output. A zero window or
// zero anchor disables filtering, as does a series whose records carry no
// timestamps at all. Distribution summaries and ground truth have no
// timestamps and are shared as-is.
func windowedBundle(in *InputBundle, anchor time.Time, window time.Duration) *InputBundle {
	return &InputBundle{
		Predictions: windowRecords(in.Predictions, anchor, window,
			func(p PredictionRecord) time.Time { return p.Timestamp }),
		ReferenceData: in.ReferenceData,
		CurrentData:   in.CurrentData,
		GroundTruth:   in.GroundTruth,
		Outputs: windowRecords(in.Outputs, anchor, window,
			func(o GenerativeOutput) time.Time { return o.Timestamp }),
		PerformanceHistory: windowRecords(in.PerformanceHistory, anchor, window,
			func(h PerformancePoint) time.Time { return h.Timestamp }),
	}
}

// windowRecords filters one record series against the window and returns
// a timestamp-sorted copy. The sort is stable so records with equal (or
// zero) timestamps keep their input order.
func windowRecords[T any](records []T, anchor time.Time, window time.Duration, at func(T) time.Time) []T {
	if len(records) == 0 {
		return nil
	}

	filter := window > 0 && !anchor.IsZero() && seriesHasTimestamps(records, at)
	cutoff := anchor.Add(-window)

	out := make([]T, 0, len(records))
	for _, r := range records {
		if filter && at(r).Before(cutoff) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return at(out[i]).Before(at(out[j]))
	})
	return out
}

// seriesHasTimestamps reports whether any record in the series carries a
// non-zero timestamp.
func seriesHasTimestamps[T any](records []T, at func(T) time.Time) bool {
	for _, r := range records {
		if !at(r).IsZero() {
			return true
		}
	}
	return false
}
