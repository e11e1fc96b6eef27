package storage

import "errors"

var (
	// ErrDimensionMismatch reports vectors whose dimensionality disagrees
	// with the index or with each other.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexNotFound reports that no persisted index exists yet. Callers
	// treat this as a cold start, not a failure.
	ErrIndexNotFound = errors.New("no persisted index found")

	// ErrIndexCorrupt reports a persisted file that exists but cannot be
	// read back as a valid index or metadata set.
	ErrIndexCorrupt = errors.New("persisted index corrupt")

	// ErrOutOfRange reports a metadata lookup past the end of the store.
	ErrOutOfRange = errors.New("ordinal out of range")
)
