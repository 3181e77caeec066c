package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/aurelab/bluepump/adapter"
	"github.com/aurelab/bluepump/audio"
)

// mockClock is a deterministic TimeProvider: Sleep advances the virtual
// clock instead of blocking, and Advance injects scheduler jitter.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Unix(1700000000, 0)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingCodec is a transparent codec that counts encode/decode calls so
// tests can observe that codec state survives release/acquire cycles.
type countingCodec struct {
	mu      sync.Mutex
	quantum int
	encodes int
	decodes int
}

func newCountingCodec(f audio.Format) *countingCodec {
	return &countingCodec{quantum: f.FramesToBytes(f.Rate / 100)}
}

func (c *countingCodec) Name() string       { return "counting" }
func (c *countingCodec) PCMFrameBytes() int { return c.quantum }

func (c *countingCodec) Encode(pcm []byte) ([]byte, error) {
	c.mu.Lock()
	c.encodes++
	c.mu.Unlock()
	return pcm, nil
}

func (c *countingCodec) Decode(data []byte) ([]byte, error) {
	c.mu.Lock()
	c.decodes++
	c.mu.Unlock()
	return data, nil
}

func (c *countingCodec) Encodes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encodes
}

// failingBackend always fails acquisition, standing in for a controller
// that cannot create the profile socket.
type failingBackend struct{}

func (failingBackend) Acquire() (*Socket, error) {
	return nil, errors.New("no controller present")
}

func (failingBackend) Release(s *Socket) error { return s.Close() }

// recordingNotifier accumulates change events for assertion.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []Change
}

func (n *recordingNotifier) TransportChanged(_ *Transport, c Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
}

func (n *recordingNotifier) count(mask Change) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, c := range n.changes {
		if c.Has(mask) {
			total++
		}
	}
	return total
}

// newTestDevice returns a fresh device holding one reference, the way the
// controller hands one to transport.New.
func newTestDevice() (*adapter.DeviceRegistry, *adapter.Device) {
	dr := adapter.NewDeviceRegistry()
	d, _ := dr.GetOrCreate("AA:BB:CC:DD:EE:FF")
	return dr, d
}
