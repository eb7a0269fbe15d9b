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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianPulse/cmd/pulse/config"
	"github.com/AleutianAI/AleutianPulse/services/cognitive"
	"github.com/AleutianAI/AleutianPulse/services/cognitive/telemetry"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// watchShutdownTimeout bounds telemetry and metrics-server cleanup.
	watchShutdownTimeout = 5 * time.Second

	// watchDefaultMinInterval floors re-assessment when the config does
	// not set one.
	watchDefaultMinInterval = 2 * time.Second
)

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runWatch(cmd *cobra.Command, args []string) {
	if err := watchLoop(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func watchLoop(path string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Global()

	// Watch is the long-running mode, so the exporters are wired here;
	// one-shot assess runs against the no-op global providers.
	shutdown, err := telemetry.Init(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), watchShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	engine, err := cognitive.NewEngine(cfg.ToEngineConfig())
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watch target: %w", err)
	}
	watchingDir := info.IsDir()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// For a single file, watch its parent directory so editors that
	// rename into place are still seen.
	watchDir := path
	if !watchingDir {
		watchDir = filepath.Dir(path)
	}
	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watching %s: %w", watchDir, err)
	}

	if addr := metricsAddr(cfg); addr != "" {
		serveMetrics(ctx, addr)
	}

	minInterval := time.Duration(cfg.Watch.MinInterval)
	if minInterval <= 0 {
		minInterval = watchDefaultMinInterval
	}
	// One assessment per min interval; events arriving faster are
	// dropped, and the ticker (when enabled) picks up anything missed.
	limiter := rate.NewLimiter(rate.Every(minInterval), 1)

	var tickerC <-chan time.Time
	if watchInterval > 0 {
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		tickerC = ticker.C
	}

	slog.Info("watching for bundle changes",
		slog.String("path", path),
		slog.String("min_interval", minInterval.String()),
		slog.Bool("directory", watchingDir),
	)

	// Initial assessment so a restart reports state immediately.
	assessTarget(ctx, engine, path, watchingDir, "startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isWatchedBundle(event.Name, path, watchingDir) {
				continue
			}
			if !limiter.Allow() {
				continue
			}
			assessWatched(ctx, engine, event.Name, "change")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))

		case <-tickerC:
			assessTarget(ctx, engine, path, watchingDir, "interval")
		}
	}
}

// =============================================================================
// ASSESSMENT DISPATCH
// =============================================================================

// assessTarget assesses the watch target: the file itself, or every
// bundle in the directory.
func assessTarget(ctx context.Context, engine *cognitive.Engine, path string, isDir bool, trigger string) {
	if !isDir {
		assessWatched(ctx, engine, path, trigger)
		return
	}

	bundles, err := filepath.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		slog.Warn("listing bundles failed", slog.String("error", err.Error()))
		return
	}
	for _, bundle := range bundles {
		assessWatched(ctx, engine, bundle, trigger)
	}
}

// assessWatched assesses one bundle file and logs the outcome instead of
// returning it; a broken bundle must not stop the watch loop.
func assessWatched(ctx context.Context, engine *cognitive.Engine, path, trigger string) {
	snap, err := assessPath(ctx, engine, path, watchModelID)
	if err != nil {
		slog.Error("assessment failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	slog.Info("assessment complete",
		slog.String("trigger", trigger),
		slog.String("model_id", snap.ModelID),
		slog.Float64("overall_trust", snap.TrustIndicators.OverallTrust),
		slog.String("trust_trend", string(snap.TrustIndicators.Trend)),
		slog.Int("risk_flags", len(snap.RiskFlags)),
	)
	for _, flag := range snap.RiskFlags {
		slog.Warn("risk flag raised",
			slog.String("model_id", snap.ModelID),
			slog.String("dimension", flag.Dimension),
			slog.String("severity", string(flag.Severity)),
			slog.String("message", flag.Message),
		)
	}
}

// isWatchedBundle reports whether an fsnotify event path belongs to the
// watch target.
func isWatchedBundle(eventPath, target string, watchingDir bool) bool {
	if watchingDir {
		return strings.EqualFold(filepath.Ext(eventPath), ".json")
	}
	return filepath.Clean(eventPath) == filepath.Clean(target)
}

// =============================================================================
// TELEMETRY WIRING
// =============================================================================

// telemetryConfig overlays the config file's telemetry section onto the
// package defaults, so blank yaml values never reach the exporters.
func telemetryConfig(cfg config.PulseConfig) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	if cfg.Telemetry.ServiceName != "" {
		tc.ServiceName = cfg.Telemetry.ServiceName
	}
	if cfg.Telemetry.Environment != "" {
		tc.Environment = cfg.Telemetry.Environment
	}
	if cfg.Telemetry.TraceExporter != "" {
		tc.TraceExporter = cfg.Telemetry.TraceExporter
	}
	if cfg.Telemetry.MetricExporter != "" {
		tc.MetricExporter = cfg.Telemetry.MetricExporter
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		tc.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	tc.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	tc.SampleRate = cfg.Telemetry.SampleRate
	return tc
}

// metricsAddr resolves the metrics listen address; the flag wins over
// the config file.
func metricsAddr(cfg config.PulseConfig) string {
	if watchMetricsAddr != "" {
		return watchMetricsAddr
	}
	return cfg.Watch.MetricsAddr
}

// serveMetrics exposes the Prometheus endpoint until the context ends.
func serveMetrics(ctx context.Context, addr string) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		slog.Warn("metrics endpoint disabled; set telemetry.metric_exporter to prometheus")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		slog.Info("serving metrics", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), watchShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}()
}
