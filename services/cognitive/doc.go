// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cognitive computes point-in-time cognitive health assessments of
// deployed models from raw operational signals.
//
// The package quantifies four independent risk dimensions and fuses them
// into a single trust score with actionable risk flags:
//
//   - Drift: statistical shift in inputs, model behavior, and outputs
//     (DriftDetector).
//   - Reliability: confidence calibration, stability, consistency, and
//     robustness (ReliabilityAnalyzer).
//   - Hallucination: grounding, factuality, uncertainty, and per-output
//     hallucination instances (HallucinationDetector).
//   - Degradation: performance decay against historical baseline with a
//     decay-to-threshold projection (DegradationTracker).
//
// # Design Rationale
//
// The engine is a pure function of a single InputBundle plus static
// configuration. It performs no I/O, holds no state between calls, and
// produces a freshly allocated Snapshot on every invocation. The four
// analyzers have no data dependency on one another, so the Engine fans
// them out concurrently and joins on completion. Missing or short data
// degrades gracefully to zeroed metric structures; only invalid
// configuration and malformed input shape are reported as errors.
//
// Several sub-metrics are explicit placeholder constants standing in for
// components a production deployment would substitute (embedding
// similarity, NLI entailment, repeated-run variance). They are named
// constants, not computed values, so downstream consumers can recognize
// them for what they are.
//
// # Usage
//
//	engine, err := cognitive.NewEngine(cognitive.DefaultEngineConfig())
//	if err != nil {
//	    return err
//	}
//	snap, err := engine.ComputeSnapshot(ctx, "fraud-scorer-v3", bundle)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("trust=%.2f flags=%d\n",
//	    snap.TrustIndicators.OverallTrust, len(snap.RiskFlags))
//
// # Thread Safety
//
// Engine and all analyzers are stateless after construction and safe for
// concurrent use from multiple goroutines.
package cognitive
