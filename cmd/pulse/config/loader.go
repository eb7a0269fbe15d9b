// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	global   PulseConfig
	loadOnce sync.Once
)

// Load resolves and parses the config file into the package singleton;
// only the first call does any work. An empty path resolves to
// ~/.aleutian/pulse.yaml, which is created with defaults on first run.
func Load(path string) error {
	var err error
	loadOnce.Do(func() {
		global, err = loadInternal(path)
	})
	return err
}

// Global returns the loaded configuration. Before a successful Load it
// returns the zero value.
func Global() PulseConfig {
	return global
}

func loadInternal(path string) (PulseConfig, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return PulseConfig{}, fmt.Errorf("could not find the user's home directory: %w", err)
		}
		path = filepath.Join(home, ".aleutian", "pulse.yaml")
	}
	// create it if it doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "First run detected, creating the default config at %s\n", path)
		if err := createDefault(path); err != nil {
			return PulseConfig{}, err
		}
	}
	return LoadFile(path)
}

// LoadFile parses one config file without touching the package singleton.
// Keys absent from the file keep their default values.
func LoadFile(path string) (PulseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PulseConfig{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PulseConfig{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
