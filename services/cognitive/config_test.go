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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()

	assert.Equal(t, 24*time.Hour, cfg.Windows.Drift)
	assert.Equal(t, 24*time.Hour, cfg.Windows.Reliability)
	assert.Equal(t, 24*time.Hour, cfg.Windows.Hallucination)
	assert.Equal(t, 30*24*time.Hour, cfg.Windows.Degradation)

	assert.Equal(t, 0.3, cfg.Thresholds.Drift)
	assert.Equal(t, 0.7, cfg.Thresholds.Reliability)
	assert.Equal(t, 0.3, cfg.Thresholds.Hallucination)
	assert.Equal(t, 0.2, cfg.Thresholds.Degradation)

	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9, "default weights should sum to 1")
	require.NoError(t, cfg.Validate())
}

func TestEngineConfig_Normalize_ZeroValue(t *testing.T) {
	var cfg EngineConfig
	assert.Equal(t, DefaultEngineConfig(), cfg.Normalize())
}

func TestEngineConfig_Normalize_PartialOverride(t *testing.T) {
	cfg := EngineConfig{
		Windows:    WindowConfig{Drift: time.Hour},
		Thresholds: ThresholdConfig{Hallucination: 0.5},
	}

	norm := cfg.Normalize()

	// Explicit fields survive.
	assert.Equal(t, time.Hour, norm.Windows.Drift)
	assert.Equal(t, 0.5, norm.Thresholds.Hallucination)

	// Omitted fields take defaults.
	assert.Equal(t, DefaultReliabilityWindow, norm.Windows.Reliability)
	assert.Equal(t, DefaultDriftThreshold, norm.Thresholds.Drift)
	assert.Equal(t, DefaultEngineConfig().Weights, norm.Weights)
}

func TestEngineConfig_Normalize_KeepsPartialWeights(t *testing.T) {
	// Weights are replaced only when the whole vector is zero; a partially
	// filled vector is an explicit choice.
	cfg := EngineConfig{Weights: TrustWeights{Drift: 0.5}}

	norm := cfg.Normalize()

	assert.Equal(t, 0.5, norm.Weights.Drift)
	assert.Equal(t, 0.0, norm.Weights.Reliability)
}

func TestEngineConfig_Normalize_DoesNotModifyReceiver(t *testing.T) {
	var cfg EngineConfig
	_ = cfg.Normalize()
	assert.Equal(t, EngineConfig{}, cfg)
}

func TestEngineConfig_Validate(t *testing.T) {
	t.Run("default passes", func(t *testing.T) {
		require.NoError(t, DefaultEngineConfig().Validate())
	})

	t.Run("threshold above one fails", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Thresholds.Drift = 1.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nan threshold fails", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Thresholds.Reliability = math.NaN()
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative window fails", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Windows.Degradation = -time.Hour
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative weight fails", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Weights.Hallucination = -0.1
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("zero weight mass fails", func(t *testing.T) {
		cfg := DefaultEngineConfig()
		cfg.Weights = TrustWeights{}
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "positive sum")
	})
}

func TestValidateBundle(t *testing.T) {
	t.Run("nil bundle", func(t *testing.T) {
		assert.ErrorIs(t, ValidateBundle(nil), ErrNilInput)
	})

	t.Run("empty bundle passes", func(t *testing.T) {
		require.NoError(t, ValidateBundle(&InputBundle{}))
	})

	t.Run("valid records pass", func(t *testing.T) {
		in := &InputBundle{
			Predictions: []PredictionRecord{
				{ID: "p1", Confidence: 0.9, PredictedLabel: "cat"},
			},
			ReferenceData: []FeatureDistribution{
				{FeatureName: "age", Mean: 50, StdDev: 10, Min: 18, Max: 90},
			},
			GroundTruth: []GroundTruthRecord{
				{PredictionID: "p1", ActualLabel: "cat", Correct: true},
			},
			Outputs: []GenerativeOutput{
				{ID: "o1", Output: "hello", Confidence: 0.8},
			},
			PerformanceHistory: []PerformancePoint{
				{Accuracy: 0.95, LatencyP50: 40, LatencyP99: 120, ErrorRate: 0.01, Throughput: 55},
			},
		}
		require.NoError(t, ValidateBundle(in))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		in := &InputBundle{
			Predictions: []PredictionRecord{{ID: "p1", Confidence: 1.5}},
		}
		assert.ErrorIs(t, ValidateBundle(in), ErrInvalidInput)
	})

	t.Run("missing prediction id", func(t *testing.T) {
		in := &InputBundle{
			Predictions: []PredictionRecord{{Confidence: 0.5}},
		}
		assert.ErrorIs(t, ValidateBundle(in), ErrInvalidInput)
	})

	t.Run("non-finite feature mean", func(t *testing.T) {
		in := &InputBundle{
			ReferenceData: []FeatureDistribution{
				{FeatureName: "age", Mean: math.NaN(), StdDev: 1},
			},
		}
		assert.ErrorIs(t, ValidateBundle(in), ErrInvalidInput)
	})

	t.Run("negative error rate", func(t *testing.T) {
		in := &InputBundle{
			PerformanceHistory: []PerformancePoint{{Accuracy: 0.9, ErrorRate: -0.2}},
		}
		assert.ErrorIs(t, ValidateBundle(in), ErrInvalidInput)
	})
}

func TestTrustWeights_Sum(t *testing.T) {
	w := TrustWeights{Drift: 0.1, Reliability: 0.2, Hallucination: 0.3, Degradation: 0.4}
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}
