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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AleutianAI/AleutianPulse/cmd/pulse/config"
	"github.com/AleutianAI/AleutianPulse/services/cognitive"
	"github.com/spf13/cobra"
)

// =============================================================================
// TYPES
// =============================================================================

// bundleFile is the on-disk shape of an assessment input: the model id
// plus the engine's input bundle, flattened into one JSON object.
type bundleFile struct {
	ModelID string `json:"modelId"`
	cognitive.InputBundle
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAssess(cmd *cobra.Command, args []string) {
	path := "-"
	if len(args) > 0 {
		path = args[0]
	}

	snap, err := assessOnce(context.Background(), path, assessModelID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeSnapshot(snap, assessOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// assessOnce builds an engine from the loaded config and assesses one
// bundle. Used by the one-shot assess command; watch builds its engine
// once and calls assessPath directly.
func assessOnce(ctx context.Context, path, modelOverride string) (*cognitive.Snapshot, error) {
	engine, err := cognitive.NewEngine(config.Global().ToEngineConfig())
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}
	return assessPath(ctx, engine, path, modelOverride)
}

// assessPath loads one bundle and computes a snapshot. modelOverride,
// when non-empty, wins over the bundle's own id.
func assessPath(ctx context.Context, engine *cognitive.Engine, path, modelOverride string) (*cognitive.Snapshot, error) {
	bundle, modelID, err := loadBundle(path)
	if err != nil {
		return nil, err
	}
	if modelOverride != "" {
		modelID = modelOverride
	}
	if modelID == "" {
		return nil, fmt.Errorf("no model id: set modelId in the bundle or pass --model-id")
	}

	snap, err := engine.ComputeSnapshot(ctx, modelID, bundle)
	if err != nil {
		return nil, fmt.Errorf("assessing %s: %w", modelID, err)
	}
	return snap, nil
}

// =============================================================================
// BUNDLE I/O
// =============================================================================

// loadBundle reads a bundle file; "-" reads stdin.
func loadBundle(path string) (*cognitive.InputBundle, string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading bundle: %w", err)
	}

	var bf bundleFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, "", fmt.Errorf("parsing bundle: %w", err)
	}
	return &bf.InputBundle, bf.ModelID, nil
}

// writeSnapshot writes indented JSON to the output path, or stdout when
// the path is empty.
func writeSnapshot(snap *cognitive.Snapshot, outPath string) error {
	return writeJSON(snap, outPath)
}

func writeJSON(v any, outPath string) error {
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
