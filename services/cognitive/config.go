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
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ----------------------------------------------------------------------------
// Engine configuration
// ----------------------------------------------------------------------------

// Default analysis windows and thresholds. A zero value in any config
// field means "use the default"; set fields explicitly to override.
const (
	DefaultDriftWindow         = 24 * time.Hour
	DefaultReliabilityWindow   = 24 * time.Hour
	DefaultHallucinationWindow = 24 * time.Hour
	DefaultDegradationWindow   = 30 * 24 * time.Hour

	DefaultDriftThreshold         = 0.3
	DefaultReliabilityThreshold   = 0.7
	DefaultHallucinationThreshold = 0.3
	DefaultDegradationThreshold   = 0.2
)

// Default trust fusion weights.
const (
	DefaultDriftWeight         = 0.25
	DefaultReliabilityWeight   = 0.30
	DefaultHallucinationWeight = 0.25
	DefaultDegradationWeight   = 0.20
)

// WindowConfig bounds how far back each analyzer looks, measured from the
// newest timestamp present in the input bundle. A zero window takes the
// default. Series whose records carry no timestamps are never filtered.
type WindowConfig struct {
	Drift         time.Duration `json:"drift" validate:"gte=0"`
	Reliability   time.Duration `json:"reliability" validate:"gte=0"`
	Hallucination time.Duration `json:"hallucination" validate:"gte=0"`
	Degradation   time.Duration `json:"degradation" validate:"gte=0"`
}

// ThresholdConfig holds the per-dimension risk bounds that raise flags.
// Drift, hallucination, and degradation flag when their score exceeds the
// threshold; reliability flags when it falls below.
type ThresholdConfig struct {
	Drift         float64 `json:"drift" validate:"finite,gte=0,lte=1"`
	Reliability   float64 `json:"reliability" validate:"finite,gte=0,lte=1"`
	Hallucination float64 `json:"hallucination" validate:"finite,gte=0,lte=1"`
	Degradation   float64 `json:"degradation" validate:"finite,gte=0,lte=1"`
}

// TrustWeights is the weight vector for trust fusion. Weights are
// normalized by their sum during fusion, so they need not sum to exactly
// 1, but the sum must be positive.
type TrustWeights struct {
	Drift         float64 `json:"drift" validate:"finite,gte=0"`
	Reliability   float64 `json:"reliability" validate:"finite,gte=0"`
	Hallucination float64 `json:"hallucination" validate:"finite,gte=0"`
	Degradation   float64 `json:"degradation" validate:"finite,gte=0"`
}

// Sum returns the total weight mass.
func (w TrustWeights) Sum() float64 {
	return w.Drift + w.Reliability + w.Hallucination + w.Degradation
}

// EngineConfig is the immutable, process-wide engine configuration.
// Construct with DefaultEngineConfig or fill selectively and let
// Normalize supply defaults for omitted fields.
type EngineConfig struct {
	Windows    WindowConfig    `json:"windows"`
	Thresholds ThresholdConfig `json:"thresholds"`
	Weights    TrustWeights    `json:"weights"`
}

// DefaultEngineConfig returns the fully populated default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Windows: WindowConfig{
			Drift:         DefaultDriftWindow,
			Reliability:   DefaultReliabilityWindow,
			Hallucination: DefaultHallucinationWindow,
			Degradation:   DefaultDegradationWindow,
		},
		Thresholds: ThresholdConfig{
			Drift:         DefaultDriftThreshold,
			Reliability:   DefaultReliabilityThreshold,
			Hallucination: DefaultHallucinationThreshold,
			Degradation:   DefaultDegradationThreshold,
		},
		Weights: TrustWeights{
			Drift:         DefaultDriftWeight,
			Reliability:   DefaultReliabilityWeight,
			Hallucination: DefaultHallucinationWeight,
			Degradation:   DefaultDegradationWeight,
		},
	}
}

// Normalize returns a copy of the configuration with every zero field
// replaced by its default. The receiver is not modified.
func (c EngineConfig) Normalize() EngineConfig {
	def := DefaultEngineConfig()

	if c.Windows.Drift == 0 {
		c.Windows.Drift = def.Windows.Drift
	}
	if c.Windows.Reliability == 0 {
		c.Windows.Reliability = def.Windows.Reliability
	}
	if c.Windows.Hallucination == 0 {
		c.Windows.Hallucination = def.Windows.Hallucination
	}
	if c.Windows.Degradation == 0 {
		c.Windows.Degradation = def.Windows.Degradation
	}

	if c.Thresholds.Drift == 0 {
		c.Thresholds.Drift = def.Thresholds.Drift
	}
	if c.Thresholds.Reliability == 0 {
		c.Thresholds.Reliability = def.Thresholds.Reliability
	}
	if c.Thresholds.Hallucination == 0 {
		c.Thresholds.Hallucination = def.Thresholds.Hallucination
	}
	if c.Thresholds.Degradation == 0 {
		c.Thresholds.Degradation = def.Thresholds.Degradation
	}

	if c.Weights == (TrustWeights{}) {
		c.Weights = def.Weights
	}

	return c
}

// Validate checks the configuration for caller bugs: negative windows,
// out-of-range thresholds, non-finite or non-positive weight mass.
// Call after Normalize.
func (c EngineConfig) Validate() error {
	if err := cognitiveValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("%w: trust weights must have positive sum", ErrInvalidConfig)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Validation plumbing
// ----------------------------------------------------------------------------

// cognitiveValidate is the package-level validator instance. Validator
// instances cache struct metadata, so a single shared instance is the
// intended usage pattern.
var cognitiveValidate *validator.Validate

func init() {
	cognitiveValidate = validator.New()

	// finite rejects NaN and Inf float values. JSON cannot encode them,
	// but in-process callers can hand us poisoned floats that would
	// otherwise propagate through every downstream formula.
	if err := cognitiveValidate.RegisterValidation("finite", validateFinite); err != nil {
		panic(fmt.Sprintf("cognitive: register finite validation: %v", err))
	}
}

// validateFinite implements the "finite" validation tag for float fields.
func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateBundle checks an input bundle for structural validity: required
// record IDs, confidences inside [0,1], finite statistics. Structurally
// valid but degenerate data (empty slices, short histories) passes; the
// analyzers degrade gracefully on those.
func ValidateBundle(in *InputBundle) error {
	if in == nil {
		return ErrNilInput
	}
	if err := cognitiveValidate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
