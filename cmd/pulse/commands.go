// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	cfgFile string // path to pulse.yaml (empty resolves to ~/.aleutian)

	assessOutput  string
	assessModelID string

	watchModelID     string
	watchInterval    time.Duration
	watchMetricsAddr string

	demoScenario string
	demoSeed     int64
	demoOutput   string
	demoModelID  string

	rootCmd = &cobra.Command{
		Use:   "pulse",
		Short: "A cli to assess the cognitive health of deployed AI models",
		Long: `Pulse turns a model's recent evidence (predictions, feature
				distributions, generative outputs, performance history) into a
				single trust snapshot: drift, reliability, hallucination risk,
				degradation, and the risk flags they raise.`,
	}

	// --- Assess ---
	assessCmd = &cobra.Command{
		Use:   "assess [bundle.json]",
		Short: "Compute one cognitive metrics snapshot from an input bundle",
		Long: `Reads a JSON input bundle from a file (or stdin with "-"),
				runs all four analyzers, and prints the snapshot as indented
				JSON. Risk flags never change the exit code; assessment
				reports, it does not gate.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runAssess, // Defined in cmd_assess.go
	}

	// --- Watch ---
	watchCmd = &cobra.Command{
		Use:   "watch [bundle.json or directory]",
		Short: "Re-assess a bundle whenever its file changes",
		Long: `Watches the given bundle file (or a directory of bundles) and
				recomputes the snapshot on every create or write event,
				logging the trust score and any risk flags. Bursty events are
				coalesced; an optional --interval re-assesses on a timer as
				well.`,
		Args: cobra.ExactArgs(1),
		Run:  runWatch, // Defined in cmd_watch.go
	}

	// --- Demo ---
	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic input bundle for a chosen scenario",
		Long: `Writes a deterministic, seeded input bundle exhibiting the
				chosen health scenario. Useful for quickstarts and for
				exercising assess/watch without production data.`,
		Run: runDemo, // Defined in cmd_demo.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the pulse version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pulse %s (commit %s)\n", version, commit)
		},
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to the pulse config file (default ~/.aleutian/pulse.yaml)")

	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().StringVarP(&assessOutput, "output", "o", "",
		"Write the snapshot JSON to this file instead of stdout")
	assessCmd.Flags().StringVar(&assessModelID, "model-id", "",
		"Override the model id carried in the bundle")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchModelID, "model-id", "",
		"Override the model id carried in the bundles")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0,
		"Also re-assess on this fixed interval (0 disables the ticker)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. ':9464'); overrides config")

	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&demoScenario, "scenario", "healthy",
		"Scenario to generate: healthy, drifting, degrading, or hallucinating")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", 1,
		"Seed for the deterministic generator")
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "",
		"Write the bundle JSON to this file instead of stdout")
	demoCmd.Flags().StringVar(&demoModelID, "model-id", "demo-model",
		"Model id to stamp into the bundle")

	rootCmd.AddCommand(versionCmd)
}
