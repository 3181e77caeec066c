// Package bluepump is the top-level context of the Bluetooth audio bridging
// daemon.
//
// A Daemon owns the adapter registry and every transport created through it.
// It is an explicit handle constructed at startup and torn down at shutdown;
// nothing in the module reaches for process-wide state, so multiple
// independent daemons can coexist in one process, which is exactly how the
// tests run.
package bluepump

import (
	"fmt"
	"sync"

	"github.com/aurelab/bluepump/adapter"
	"github.com/aurelab/bluepump/audio"
	"github.com/aurelab/bluepump/config"
	"github.com/aurelab/bluepump/transport"
	"github.com/sirupsen/logrus"
)

// Daemon ties the registry hierarchy, the notifier, and the configuration
// together. All mutation goes through the controller goroutine calling these
// methods; pump goroutines never touch the daemon.
type Daemon struct {
	cfg      *config.Config
	notifier transport.Notifier
	adapters *adapter.Registry

	mu         sync.Mutex
	transports map[string]*transport.Transport
	closed     bool
}

// New constructs a daemon from the configuration and registers its adapters.
// A nil notifier discards change events.
func New(cfg *config.Config, notifier transport.Notifier) (*Daemon, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("daemon config: %w", err)
	}
	if notifier == nil {
		notifier = transport.NopNotifier{}
	}

	d := &Daemon{
		cfg:        cfg,
		notifier:   notifier,
		adapters:   adapter.NewRegistry(),
		transports: make(map[string]*transport.Transport),
	}

	for _, ac := range cfg.Adapters {
		if _, err := d.adapters.Add(ac.Index, ac.Name); err != nil {
			return nil, fmt.Errorf("register adapter: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"adapters": d.adapters.Len(),
	}).Info("Daemon created")

	return d, nil
}

// Adapters returns the adapter registry.
func (d *Daemon) Adapters() *adapter.Registry { return d.adapters }

// transportID keys a transport within the daemon.
func transportID(addr string, profile transport.Profile, codec audio.Codec) string {
	return addr + "/" + profile.String() + "/" + codec.Name()
}

// ConnectTransport is the profile-connection path driven by controller
// events: it gets or creates the device for addr on the given adapter,
// creates the transport bound to the profile backend, and tracks it for
// shutdown. The device reference taken here is owned by the transport and
// dropped by its destroy.
func (d *Daemon) ConnectTransport(adapterIndex int, addr string, profile transport.Profile,
	codec audio.Codec, format audio.Format, backend transport.Backend) (*transport.Transport, error) {

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDaemonClosed
	}
	if codec == nil {
		return nil, transport.ErrNilCodec
	}

	id := transportID(addr, profile, codec)
	if _, exists := d.transports[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTransportExists, id)
	}

	a, err := d.adapters.Get(adapterIndex)
	if err != nil {
		return nil, err
	}

	dev, created := a.Devices().GetOrCreate(addr)
	tr, err := transport.New(dev, profile, codec, format, backend, &transport.Options{
		Notifier:      d.notifier,
		ToneFrequency: d.cfg.ToneFrequency,
	})
	if err != nil {
		// Hand back the reference taken for the transport.
		dev.Release()
		return nil, err
	}
	d.transports[id] = tr

	logrus.WithFields(logrus.Fields{
		"function":   "ConnectTransport",
		"adapter":    a.Name(),
		"address":    addr,
		"transport":  tr.Key(),
		"new_device": created,
	}).Info("Transport connected")

	return tr, nil
}

// DisconnectTransport destroys the transport created for addr and the given
// profile/codec pair, blocking until its pump has exited.
func (d *Daemon) DisconnectTransport(addr string, profile transport.Profile, codec audio.Codec) error {
	d.mu.Lock()
	id := transportID(addr, profile, codec)
	tr, exists := d.transports[id]
	if !exists {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransportNotFound, id)
	}
	delete(d.transports, id)
	d.mu.Unlock()

	tr.Destroy()

	logrus.WithFields(logrus.Fields{
		"function":  "DisconnectTransport",
		"transport": id,
	}).Info("Transport disconnected")

	return nil
}

// Transports returns a snapshot of the live transports.
func (d *Daemon) Transports() []*transport.Transport {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*transport.Transport, 0, len(d.transports))
	for _, tr := range d.transports {
		out = append(out, tr)
	}
	return out
}

// Shutdown is the supervisory global cancellation: every pump observes it
// identically to its own transport's destroy. It destroys all transports,
// then removes the adapters, and is idempotent so a signal handler and a
// deferred call can race safely.
func (d *Daemon) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	live := make([]*transport.Transport, 0, len(d.transports))
	for _, tr := range d.transports {
		live = append(live, tr)
	}
	d.transports = make(map[string]*transport.Transport)
	d.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "Shutdown",
		"transports": len(live),
	}).Info("Daemon shutting down")

	for _, tr := range live {
		tr.Destroy()
	}
	for _, a := range d.adapters.All() {
		_ = d.adapters.Remove(a.Index())
	}

	logrus.WithFields(logrus.Fields{
		"function": "Shutdown",
	}).Info("Daemon shutdown complete")
}
