package transport

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aurelab/bluepump/adapter"
	"github.com/aurelab/bluepump/audio"
	"github.com/sirupsen/logrus"
)

// Options configures optional transport collaborators. The zero value is
// usable: a silent notifier, the system clock, and a 440 Hz fallback tone.
type Options struct {
	// Notifier receives change events; nil discards them.
	Notifier Notifier

	// TimeProvider drives pacing and idle polling; nil selects the
	// system clock.
	TimeProvider TimeProvider

	// ToneFrequency is the synthetic generator frequency used by source
	// transports with no connected capture client; 0 selects 440 Hz.
	ToneFrequency float64

	// Volume is the initial volume in the 0..127 controller range;
	// 0 means full scale is left to the defaults (100).
	Volume int
}

// Transport is one negotiated Bluetooth audio stream bound to a device.
//
// A transport belongs to exactly one device for its entire life. Its pump
// goroutine is spawned by New and joined by Destroy; Acquire and Release
// only bind and unbind the socket the pump streams through.
type Transport struct {
	profile Profile
	dev     *adapter.Device
	codec   audio.Codec
	format  audio.Format
	backend Backend

	notifier Notifier
	tp       TimeProvider

	// sock is the only field shared between the controller and the pump.
	// nil is the invalid sentinel of an unacquired transport.
	sock  atomic.Pointer[Socket]
	state atomic.Int32

	mu        sync.Mutex
	destroyed bool
	volume    int

	// playback carries decoded remote audio towards the host
	// (a2dp-sink, sco speaker); capture feeds local audio to the remote
	// (a2dp-source, sco microphone).
	playback *Endpoint
	capture  *Endpoint
	tone     *audio.SineSource

	cancel chan struct{}
	done   chan struct{}
}

// New creates a transport on dev for the given profile, binds the
// profile-specific backend, derives the PCM endpoints from the codec
// configuration, attaches to the device, and spawns the pump goroutine.
// The pump starts in the idle-poll branch; no data moves until Acquire.
func New(dev *adapter.Device, profile Profile, codec audio.Codec, format audio.Format, backend Backend, opts *Options) (*Transport, error) {
	logrus.WithFields(logrus.Fields{
		"function": "New",
		"profile":  profile.String(),
	}).Info("Creating transport")

	if dev == nil {
		return nil, ErrNilDevice
	}
	if codec == nil {
		return nil, ErrNilCodec
	}
	if backend == nil {
		return nil, ErrNilBackend
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", audio.ErrInvalidFormat, format)
	}
	if opts == nil {
		opts = &Options{}
	}

	t := &Transport{
		profile:  profile,
		dev:      dev,
		codec:    codec,
		format:   format,
		backend:  backend,
		notifier: opts.Notifier,
		tp:       opts.TimeProvider,
		volume:   opts.Volume,
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	if t.notifier == nil {
		t.notifier = NopNotifier{}
	}
	if t.tp == nil {
		t.tp = RealTimeProvider{}
	}
	if t.volume <= 0 || t.volume > maxVolume {
		t.volume = 100
	}

	freq := opts.ToneFrequency
	if freq <= 0 {
		freq = 440
	}

	switch profile {
	case ProfileA2DPSource:
		t.capture = NewEndpoint("playback-client", format)
		t.tone = audio.NewSineSource(format, freq)
	case ProfileA2DPSink:
		t.playback = NewEndpoint("capture-client", format)
	case ProfileSCO:
		t.playback = NewEndpoint("speaker", format)
		t.capture = NewEndpoint("microphone", format)
		t.tone = audio.NewSineSource(format, freq)
	default:
		return nil, fmt.Errorf("unknown profile %d", profile)
	}

	for _, ep := range []*Endpoint{t.playback, t.capture} {
		if ep != nil {
			ep.SetChangeFunc(func(bool) { t.notify(ChangeAvailability) })
		}
	}

	t.state.Store(int32(StateIdle))
	dev.AttachTransport(t)
	go t.pumpLoop()

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"address":  dev.Address(),
		"key":      t.Key(),
		"format":   format.String(),
	}).Info("Transport created")

	t.notify(ChangeSampling | ChangeCodec | ChangeVolume)
	return t, nil
}

// Key uniquely identifies the transport within its device.
func (t *Transport) Key() string { return t.profile.String() + "/" + t.codec.Name() }

// Device returns the owning device.
func (t *Transport) Device() *adapter.Device { return t.dev }

// Profile returns the negotiated profile.
func (t *Transport) Profile() Profile { return t.profile }

// Codec returns the transport codec. Its state belongs to the pump once the
// transport is streaming; callers may only inspect identity and sizing.
func (t *Transport) Codec() audio.Codec { return t.codec }

// Format returns the PCM format derived at creation. Any change requires an
// explicit reconfiguration through the controller; the pump never mutates
// its own configuration.
func (t *Transport) Format() audio.Format { return t.format }

// State returns the current pump state.
func (t *Transport) State() State { return State(t.state.Load()) }

// Playback returns the host-facing endpoint decoded remote audio is written
// to, or nil for profiles without one.
func (t *Transport) Playback() *Endpoint { return t.playback }

// Capture returns the host-facing endpoint local audio is read from, or nil
// for profiles without one.
func (t *Transport) Capture() *Endpoint { return t.capture }

// Acquire obtains a live socket from the profile backend and publishes it to
// the pump. It is idempotent: a second call while already acquired is a
// no-op success. A backend failure is returned to the caller and leaves the
// transport destroyable.
func (t *Transport) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertAlive("Acquire")

	if t.sock.Load() != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Acquire",
			"key":      t.Key(),
		}).Debug("Transport already acquired")
		return nil
	}

	s, err := t.backend.Acquire()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Acquire",
			"key":      t.Key(),
			"error":    err.Error(),
		}).Error("Socket acquisition failed")
		return fmt.Errorf("%w: %v", ErrAcquireFailed, err)
	}
	t.sock.Store(s)

	logrus.WithFields(logrus.Fields{
		"function":  "Acquire",
		"key":       t.Key(),
		"read_mtu":  s.ReadMTU,
		"write_mtu": s.WriteMTU,
	}).Info("Transport acquired")

	return nil
}

// Release closes the socket and resets it to the invalid sentinel. The pump
// detects this and falls back to idle polling without exiting; codec state
// is preserved for a future Acquire. Releasing an unacquired transport is a
// no-op success.
func (t *Transport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertAlive("Release")

	s := t.sock.Swap(nil)
	if s == nil {
		return nil
	}

	err := t.backend.Release(s)
	logrus.WithFields(logrus.Fields{
		"function": "Release",
		"key":      t.Key(),
	}).Info("Transport released")
	return err
}

// Destroy requests cooperative cancellation of the pump, unblocks any
// in-flight I/O by closing the socket and endpoints, blocks until the pump
// has exited, then detaches from the device and drops the device reference.
// Destroying a transport twice is a controller defect and panics.
func (t *Transport) Destroy() {
	t.mu.Lock()
	if t.destroyed {
		t.mu.Unlock()
		panic(fmt.Sprintf("%v: double destroy of %s", ErrInvariantViolation, t.Key()))
	}
	t.destroyed = true
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Destroy",
		"key":      t.Key(),
		"address":  t.dev.Address(),
	}).Info("Destroying transport")

	close(t.cancel)

	// Cooperative cancellation cannot interrupt blocking I/O, so the
	// socket and endpoints are closed before the join to guarantee the
	// pump reaches its safe point.
	if s := t.sock.Swap(nil); s != nil {
		_ = t.backend.Release(s)
	}
	if t.playback != nil {
		t.playback.Disconnect()
	}
	if t.capture != nil {
		t.capture.Disconnect()
	}

	<-t.done

	t.dev.DetachTransport(t)
	t.dev.Release()

	logrus.WithFields(logrus.Fields{
		"function": "Destroy",
		"key":      t.Key(),
	}).Info("Transport destroyed")
}

const maxVolume = 127

// Volume returns the current volume in the 0..127 controller range.
func (t *Transport) Volume() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// SetVolume updates the volume and emits a VOLUME change event.
func (t *Transport) SetVolume(v int) error {
	t.mu.Lock()
	t.assertAlive("SetVolume")
	if v < 0 {
		v = 0
	}
	if v > maxVolume {
		v = maxVolume
	}
	changed := v != t.volume
	t.volume = v
	t.mu.Unlock()

	if changed {
		logrus.WithFields(logrus.Fields{
			"function": "SetVolume",
			"key":      t.Key(),
			"volume":   v,
		}).Debug("Transport volume changed")
		t.notify(ChangeVolume)
	}
	return nil
}

// assertAlive panics if the transport has been destroyed. Called with the
// transport mutex held. Use after destroy is a controller defect, not a
// recoverable condition.
func (t *Transport) assertAlive(op string) {
	if t.destroyed {
		panic(fmt.Sprintf("%v: %s on destroyed transport %s", ErrInvariantViolation, op, t.Key()))
	}
}

// notify forwards a change event to the notifier, fire-and-forget.
func (t *Transport) notify(c Change) {
	t.notifier.TransportChanged(t, c)
}

// dropSocket is the pump-side disconnect path: it retires the socket it was
// streaming through after a transfer error. The compare-and-swap loses
// against a concurrent controller Release or Destroy, which already closed
// the socket.
func (t *Transport) dropSocket(s *Socket) {
	if t.sock.CompareAndSwap(s, nil) {
		_ = t.backend.Release(s)
	}
}
