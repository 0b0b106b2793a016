// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "errors"

// Sentinel errors shared across the store and resolver layers. Wrap with
// fmt.Errorf("...: %w", ...) and test with errors.Is.
var (
	// ErrNotFound reports a path absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict reports a write rejected because the supplied
	// version token no longer matches the store's current token.
	ErrVersionConflict = errors.New("version conflict")

	// ErrRetryExhausted reports a version conflict that persisted past the
	// resolver's attempt cap.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidInput reports a caller contract violation, such as
	// overlapping edit blocks.
	ErrInvalidInput = errors.New("invalid input")
)
