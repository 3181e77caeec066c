package adapter

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrAdapterExists indicates a radio index is already registered.
	ErrAdapterExists = errors.New("adapter already registered")

	// ErrAdapterNotFound indicates no adapter is registered at the index.
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrInvariantViolation marks controller-side defects: unbalanced
	// reference counting, detaching unknown transports, or dropping the
	// last device reference while transports are still alive. These abort
	// via panic rather than being returned.
	ErrInvariantViolation = errors.New("registry invariant violation")
)
