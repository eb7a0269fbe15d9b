// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry bootstraps OpenTelemetry for pulse processes.
//
// Init wires the global TracerProvider and MeterProvider from a single
// Config; after it returns, the instrument and span helpers in the
// cognitive package export through the configured pipelines. Library code
// never calls Init; only process entry points do, once, keeping the
// exporter choice (OTLP, Prometheus, stdout, none) an operational concern
// rather than a code one.
package telemetry
