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

import "errors"

// ----------------------------------------------------------------------------
// Sentinel errors
// ----------------------------------------------------------------------------

var (
	// ErrNilContext indicates a nil context.Context was passed.
	ErrNilContext = errors.New("context must not be nil")

	// ErrNilInput indicates a nil input bundle was passed to an analyzer.
	// The engine itself treats a nil bundle as empty; analyzers called
	// directly require a non-nil bundle.
	ErrNilInput = errors.New("input bundle must not be nil")

	// ErrEmptyModelID indicates an assessment was requested without a
	// model identifier.
	ErrEmptyModelID = errors.New("model id must not be empty")

	// ErrInvalidConfig indicates the engine configuration failed
	// validation. The wrapped error names the offending field.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrInvalidInput indicates the input bundle is structurally
	// malformed (out-of-range confidence, non-finite statistics, missing
	// record IDs). Malformed shape is a caller bug and fails fast.
	ErrInvalidInput = errors.New("invalid input bundle")
)
