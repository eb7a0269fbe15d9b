// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the application-level configuration for the pulse
// CLI: engine tuning, telemetry wiring, logging, and watch behavior. The
// engine package keeps its own validated EngineConfig; this package is
// only the yaml surface that feeds it.
package config

import (
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianPulse/services/cognitive"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml files can say "24h" or "90m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

type PulseConfig struct {
	// Engine: analyzer windows, flag thresholds, and trust fusion weights
	Engine EngineSection `yaml:"engine"`

	// Telemetry: exporter selection for traces and metrics
	Telemetry TelemetrySection `yaml:"telemetry"`

	// Logging: level and handler format for the application logger
	Logging LoggingSection `yaml:"logging"`

	// Watch: continuous assessment behavior for `pulse watch`
	Watch WatchSection `yaml:"watch"`
}

type EngineSection struct {
	Windows    WindowsSection    `yaml:"windows"`
	Thresholds ThresholdsSection `yaml:"thresholds"`
	Weights    WeightsSection    `yaml:"weights"`
}

type WindowsSection struct {
	Drift         Duration `yaml:"drift"`         // e.g. 24h
	Reliability   Duration `yaml:"reliability"`   // e.g. 24h
	Hallucination Duration `yaml:"hallucination"` // e.g. 24h
	Degradation   Duration `yaml:"degradation"`   // e.g. 720h
}

type ThresholdsSection struct {
	Drift         float64 `yaml:"drift"`
	Reliability   float64 `yaml:"reliability"`
	Hallucination float64 `yaml:"hallucination"`
	Degradation   float64 `yaml:"degradation"`
}

type WeightsSection struct {
	Drift         float64 `yaml:"drift"`
	Reliability   float64 `yaml:"reliability"`
	Hallucination float64 `yaml:"hallucination"`
	Degradation   float64 `yaml:"degradation"`
}

type TelemetrySection struct {
	ServiceName    string  `yaml:"service_name"`
	Environment    string  `yaml:"environment"`
	TraceExporter  string  `yaml:"trace_exporter"`  // otlp, stdout, none
	MetricExporter string  `yaml:"metric_exporter"` // prometheus, stdout, none
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	SampleRate     float64 `yaml:"sample_rate"`
}

type LoggingSection struct {
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // auto, text, json
	AddSource bool   `yaml:"add_source"`
}

type WatchSection struct {
	// MinInterval floors how often file events may trigger a re-assessment.
	MinInterval Duration `yaml:"min_interval"`

	// MetricsAddr serves the Prometheus endpoint when non-empty, e.g. ":9464".
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig mirrors the engine and telemetry defaults so a generated
// config file documents every knob with its effective value.
func DefaultConfig() PulseConfig {
	return PulseConfig{
		Engine: EngineSection{
			Windows: WindowsSection{
				Drift:         Duration(24 * time.Hour),
				Reliability:   Duration(24 * time.Hour),
				Hallucination: Duration(24 * time.Hour),
				Degradation:   Duration(30 * 24 * time.Hour),
			},
			Thresholds: ThresholdsSection{
				Drift:         0.3,
				Reliability:   0.7,
				Hallucination: 0.3,
				Degradation:   0.2,
			},
			Weights: WeightsSection{
				Drift:         0.25,
				Reliability:   0.30,
				Hallucination: 0.25,
				Degradation:   0.20,
			},
		},
		Telemetry: TelemetrySection{
			ServiceName:    "pulse",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
			SampleRate:     1.0,
		},
		Logging: LoggingSection{
			Level:  "info",
			Format: "auto",
		},
		Watch: WatchSection{
			MinInterval: Duration(2 * time.Second),
		},
	}
}

// ToEngineConfig converts the yaml engine section into the engine's own
// config type. Validation happens in the engine constructor, not here.
func (c PulseConfig) ToEngineConfig() cognitive.EngineConfig {
	return cognitive.EngineConfig{
		Windows: cognitive.WindowConfig{
			Drift:         time.Duration(c.Engine.Windows.Drift),
			Reliability:   time.Duration(c.Engine.Windows.Reliability),
			Hallucination: time.Duration(c.Engine.Windows.Hallucination),
			Degradation:   time.Duration(c.Engine.Windows.Degradation),
		},
		Thresholds: cognitive.ThresholdConfig{
			Drift:         c.Engine.Thresholds.Drift,
			Reliability:   c.Engine.Thresholds.Reliability,
			Hallucination: c.Engine.Thresholds.Hallucination,
			Degradation:   c.Engine.Thresholds.Degradation,
		},
		Weights: cognitive.TrustWeights{
			Drift:         c.Engine.Weights.Drift,
			Reliability:   c.Engine.Weights.Reliability,
			Hallucination: c.Engine.Weights.Hallucination,
			Degradation:   c.Engine.Weights.Degradation,
		},
	}
}
