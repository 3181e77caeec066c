package transport

import (
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// Socket is a live Bluetooth stream descriptor together with its negotiated
// maximum read/write frame sizes. It is published to the pump through an
// atomic pointer; a nil pointer is the invalid sentinel of an unacquired
// transport.
type Socket struct {
	Conn     io.ReadWriteCloser
	ReadMTU  int
	WriteMTU int
}

// Close closes the underlying stream.
func (s *Socket) Close() error {
	if s == nil || s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}

// Backend is the profile-specific acquire/release capability pair bound to
// a transport at creation. The production implementation negotiates a real
// Bluetooth socket (see the ipc package); tests and the mock profile
// substitute a local pipe, exactly as the daemon's own harness does.
type Backend interface {
	// Acquire obtains a live socket and its negotiated MTUs.
	Acquire() (*Socket, error)

	// Release closes the socket obtained from Acquire.
	Release(s *Socket) error
}

// defaultPipeMTU matches the default L2CAP MTU used when no negotiation
// takes place.
const defaultPipeMTU = 672

// PipeBackend is a Backend over an in-process synchronous pipe. The remote
// end stands in for the peer device; reads and writes on it drive or drain
// the pump the way the radio would.
type PipeBackend struct {
	mu       sync.Mutex
	mtu      int
	remote   net.Conn
	acquires int
}

// NewPipeBackend creates a pipe backend with the given MTU
// (defaultPipeMTU if mtu <= 0).
func NewPipeBackend(mtu int) *PipeBackend {
	if mtu <= 0 {
		mtu = defaultPipeMTU
	}
	return &PipeBackend{mtu: mtu}
}

// Acquire creates the pipe pair and returns the local end.
func (b *PipeBackend) Acquire() (*Socket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	local, remote := net.Pipe()
	if b.remote != nil {
		// A previous acquisition was never released; drop its peer end.
		_ = b.remote.Close()
	}
	b.remote = remote
	b.acquires++

	logrus.WithFields(logrus.Fields{
		"function": "PipeBackend.Acquire",
		"mtu":      b.mtu,
		"acquires": b.acquires,
	}).Debug("Pipe socket acquired")

	return &Socket{Conn: local, ReadMTU: b.mtu, WriteMTU: b.mtu}, nil
}

// Release closes the socket and its remote end.
func (b *PipeBackend) Release(s *Socket) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := s.Close()
	if b.remote != nil {
		_ = b.remote.Close()
		b.remote = nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "PipeBackend.Release",
	}).Debug("Pipe socket released")

	return err
}

// Remote returns the peer end of the current acquisition, or nil.
func (b *PipeBackend) Remote() net.Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remote
}

// Acquires returns how many times Acquire has been called.
func (b *PipeBackend) Acquires() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquires
}
