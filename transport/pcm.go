package transport

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aurelab/bluepump/audio"
	"github.com/sirupsen/logrus"
)

// Endpoint is the local-side PCM conduit between the pump and the host
// audio stack. It wraps a connectable stream, hides short reads and writes
// from the pump, and raises availability transitions to the transport's
// notifier.
//
// The pump never treats a disconnected endpoint as an error: a source-role
// pump falls back to its synthetic generator and a sink-role pump discards
// decoded audio until a client reconnects.
type Endpoint struct {
	name   string
	format audio.Format

	mu     sync.Mutex
	stream io.ReadWriteCloser
	open   atomic.Bool

	// onChange is invoked on every available/unavailable transition.
	// Set once, before the endpoint is shared with the pump.
	onChange func(open bool)
}

// NewEndpoint creates a disconnected endpoint carrying the given format.
func NewEndpoint(name string, f audio.Format) *Endpoint {
	return &Endpoint{name: name, format: f}
}

// Name returns the endpoint role name, e.g. "speaker" or "microphone".
func (e *Endpoint) Name() string { return e.name }

// Format returns the PCM format flowing through the endpoint.
func (e *Endpoint) Format() audio.Format { return e.format }

// IsOpen reports whether a stream is currently connected.
func (e *Endpoint) IsOpen() bool { return e.open.Load() }

// SetChangeFunc installs the availability transition hook.
func (e *Endpoint) SetChangeFunc(fn func(open bool)) { e.onChange = fn }

// Connect attaches a stream to the endpoint and marks it available.
func (e *Endpoint) Connect(stream io.ReadWriteCloser) error {
	e.mu.Lock()
	if e.stream != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEndpointBusy, e.name)
	}
	e.stream = stream
	e.open.Store(true)
	e.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Endpoint.Connect",
		"endpoint": e.name,
		"format":   e.format.String(),
	}).Info("PCM endpoint connected")

	if e.onChange != nil {
		e.onChange(true)
	}
	return nil
}

// Disconnect detaches and closes the current stream, if any, and marks the
// endpoint unavailable. Safe to call from the pump on I/O failure and from
// the controller on teardown; only the first caller observes the transition.
func (e *Endpoint) Disconnect() {
	e.mu.Lock()
	stream := e.stream
	e.stream = nil
	wasOpen := e.open.Swap(false)
	e.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	if !wasOpen {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Endpoint.Disconnect",
		"endpoint": e.name,
	}).Info("PCM endpoint disconnected")

	if e.onChange != nil {
		e.onChange(false)
	}
}

// ReadFull reads exactly len(buf) bytes from the connected stream, looping
// over short reads.
func (e *Endpoint) ReadFull(buf []byte) error {
	stream := e.current()
	if stream == nil {
		return fmt.Errorf("%w: %s", ErrEndpointClosed, e.name)
	}
	if _, err := io.ReadFull(stream, buf); err != nil {
		return fmt.Errorf("endpoint %s read: %w", e.name, err)
	}
	return nil
}

// WriteFull writes all of buf to the connected stream, looping over short
// writes.
func (e *Endpoint) WriteFull(buf []byte) error {
	stream := e.current()
	if stream == nil {
		return fmt.Errorf("%w: %s", ErrEndpointClosed, e.name)
	}
	for off := 0; off < len(buf); {
		n, err := stream.Write(buf[off:])
		if err != nil {
			return fmt.Errorf("endpoint %s write: %w", e.name, err)
		}
		if n == 0 {
			return fmt.Errorf("endpoint %s write: %w", e.name, io.ErrShortWrite)
		}
		off += n
	}
	return nil
}

// current returns the connected stream without holding the lock across I/O;
// a concurrent Disconnect unblocks pending calls by closing the stream.
func (e *Endpoint) current() io.ReadWriteCloser {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream
}
