// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds the process-wide slog logger for pulse.
//
// The package is built on Go's standard library slog, with two
// additions: format auto-detection and trace correlation.
//
// # Format Selection
//
// Three formats are supported:
//
//   - text: human-readable key=value output
//   - json: one JSON object per line (machine-parseable)
//   - auto: text when the output is an interactive terminal, json
//     otherwise (piped output, CI/CD, log collectors)
//
// Auto is the default, so `pulse assess` run by hand reads cleanly
// while the same invocation under systemd or a pipeline produces
// parseable lines without any configuration.
//
// # Trace Correlation
//
// Every handler is wrapped so that records logged with a context
// carrying an active span gain trace_id and span_id attributes:
//
//	slog.InfoContext(ctx, "assessment complete", "model_id", id)
//	// => ... trace_id=0af7651916cd43dd8448eb211c80319c span_id=... model_id=...
//
// Records logged without a span pass through unchanged.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "debug"})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Configuration
// =============================================================================

// Format selects the log output encoding.
type Format string

const (
	// FormatAuto picks text for terminals and json for everything else.
	FormatAuto Format = "auto"

	// FormatText emits human-readable key=value lines.
	FormatText Format = "text"

	// FormatJSON emits one JSON object per line.
	FormatJSON Format = "json"
)

// Config configures the logger built by New.
//
// The zero value is usable: Info level, auto format, stderr output.
type Config struct {
	// Level is the minimum severity to emit: "debug", "info", "warn",
	// or "error". Empty means "info".
	Level string

	// Format selects the output encoding. Empty means FormatAuto.
	Format Format

	// AddSource includes the file:line of the logging call in each
	// record. Useful in development, noisy in production.
	AddSource bool

	// Output is the destination writer. Nil means os.Stderr, which
	// keeps stdout free for command output.
	Output io.Writer
}

// DefaultConfig returns the configuration used when nothing is set:
// Info level, auto format, stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatAuto,
	}
}

// =============================================================================
// Construction
// =============================================================================

// New builds a *slog.Logger from the config.
//
// Parameters:
//   - cfg: Logger configuration (see Config for defaults)
//
// Returns:
//   - *slog.Logger: Ready to use, typically via slog.SetDefault
//   - error: Non-nil for an unknown level or format
func New(cfg Config) (*slog.Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	format := cfg.Format
	if format == "" {
		format = FormatAuto
	}
	if format == FormatAuto {
		if writerIsTerminal(out) {
			format = FormatText
		} else {
			format = FormatJSON
		}
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(out, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(&spanHandler{inner: handler}), nil
}

// ParseLevel converts a level name to its slog.Level.
//
// Accepts "debug", "info", "warn" (or "warning"), and "error" in any
// case. The empty string parses as Info.
//
// Returns:
//   - slog.Level: The parsed level
//   - error: Non-nil if the name is not recognized
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// writerIsTerminal reports whether the writer is an interactive
// terminal. Writers without a file descriptor (buffers, pipes wrapped
// in other types) are never terminals.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// Trace Correlation
// =============================================================================

// spanHandler decorates records with the active span's identifiers so
// log lines can be joined with traces in a backend. Records logged
// without a span context pass through untouched.
type spanHandler struct {
	inner slog.Handler
}

// Enabled delegates to the wrapped handler.
func (h *spanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds trace_id and span_id when the context carries a valid
// span, then delegates.
func (h *spanHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r = r.Clone()
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new handler with the attributes applied to the
// wrapped handler.
func (h *spanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &spanHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the group applied to the
// wrapped handler.
func (h *spanHandler) WithGroup(name string) slog.Handler {
	return &spanHandler{inner: h.inner.WithGroup(name)}
}
