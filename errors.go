package bluepump

import "errors"

// Sentinel errors for daemon operations.
var (
	// ErrDaemonClosed indicates an operation on a shut-down daemon.
	ErrDaemonClosed = errors.New("daemon is shut down")

	// ErrTransportExists indicates a duplicate transport connection for
	// the same device, profile, and codec.
	ErrTransportExists = errors.New("transport already connected")

	// ErrTransportNotFound indicates a disconnect for an unknown
	// transport.
	ErrTransportNotFound = errors.New("transport not found")
)
