package transport

import "errors"

// Sentinel errors for transport operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrNilDevice indicates a transport was created without a device.
	ErrNilDevice = errors.New("device cannot be nil")

	// ErrNilCodec indicates a transport was created without a codec.
	ErrNilCodec = errors.New("codec cannot be nil")

	// ErrNilBackend indicates a transport was created without a
	// profile backend.
	ErrNilBackend = errors.New("profile backend cannot be nil")

	// ErrAcquireFailed wraps a backend socket-creation failure. The
	// transport stays in a non-functional but destroyable state.
	ErrAcquireFailed = errors.New("socket acquisition failed")

	// ErrEndpointClosed indicates I/O on a disconnected PCM endpoint.
	ErrEndpointClosed = errors.New("PCM endpoint is closed")

	// ErrEndpointBusy indicates a second stream was connected to an
	// endpoint that already has one.
	ErrEndpointBusy = errors.New("PCM endpoint already connected")

	// ErrInvariantViolation marks controller-side defects: double
	// destroy or use of a transport after destroy. These abort via
	// panic rather than being returned.
	ErrInvariantViolation = errors.New("transport invariant violation")
)
