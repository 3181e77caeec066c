package adapter

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Adapter represents one local Bluetooth radio.
type Adapter struct {
	index   int
	name    string
	devices *DeviceRegistry
}

// Index returns the radio index (the N in "hciN").
func (a *Adapter) Index() int { return a.index }

// Name returns the controller name, e.g. "hci0".
func (a *Adapter) Name() string { return a.name }

// Devices returns the adapter's device registry.
func (a *Adapter) Devices() *DeviceRegistry { return a.devices }

// Registry holds one Adapter per local radio, keyed by radio index.
// It is created at daemon startup and torn down at shutdown.
type Registry struct {
	mu       sync.RWMutex
	adapters map[int]*Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[int]*Adapter)}
}

// Add registers a new adapter for the given radio index.
func (r *Registry) Add(index int, name string) (*Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[index]; exists {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.Add",
			"index":    index,
		}).Error("Adapter index already registered")
		return nil, fmt.Errorf("%w: hci%d", ErrAdapterExists, index)
	}

	a := &Adapter{
		index:   index,
		name:    name,
		devices: NewDeviceRegistry(),
	}
	a.devices.adapter = a
	r.adapters[index] = a

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Add",
		"index":    index,
		"name":     name,
	}).Info("Adapter registered")

	return a, nil
}

// Get returns the adapter registered at the given radio index.
func (r *Registry) Get(index int) (*Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.adapters[index]
	if !exists {
		return nil, fmt.Errorf("%w: hci%d", ErrAdapterNotFound, index)
	}
	return a, nil
}

// Remove unregisters the adapter at the given index. The adapter's device
// registry must already be empty.
func (r *Registry) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.adapters[index]
	if !exists {
		return fmt.Errorf("%w: hci%d", ErrAdapterNotFound, index)
	}
	if n := a.devices.Len(); n != 0 {
		panic(fmt.Sprintf("%v: removing hci%d with %d live devices", ErrInvariantViolation, index, n))
	}
	delete(r.adapters, index)

	logrus.WithFields(logrus.Fields{
		"function": "Registry.Remove",
		"index":    index,
	}).Info("Adapter unregistered")

	return nil
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// All returns a snapshot of the registered adapters.
func (r *Registry) All() []*Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}

// DeviceRegistry is the address-keyed, reference-counted collection of
// remote peers owned by one adapter.
type DeviceRegistry struct {
	mu      sync.RWMutex
	adapter *Adapter
	devices map[string]*Device
}

// NewDeviceRegistry creates an empty device registry.
func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{devices: make(map[string]*Device)}
}

// GetOrCreate returns the device registered at addr, creating it with a
// reference count of one if absent; an existing device gains a reference.
// Every call must be balanced by exactly one ReleaseReference.
func (dr *DeviceRegistry) GetOrCreate(addr string) (*Device, bool) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if d, exists := dr.devices[addr]; exists {
		d.refs++
		logrus.WithFields(logrus.Fields{
			"function": "GetOrCreate",
			"address":  addr,
			"refs":     d.refs,
		}).Debug("Device reference added")
		return d, false
	}

	d := &Device{
		addr:       addr,
		adapter:    dr.adapter,
		registry:   dr,
		refs:       1,
		transports: make(map[string]TransportHandle),
	}
	dr.devices[addr] = d

	logrus.WithFields(logrus.Fields{
		"function": "GetOrCreate",
		"address":  addr,
	}).Info("Device created")

	return d, true
}

// ReleaseReference drops one reference from the device at addr. The final
// release removes the device; its transport set must be empty by then.
// Releasing an unknown address is a controller defect.
func (dr *DeviceRegistry) ReleaseReference(addr string) {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	d, exists := dr.devices[addr]
	if !exists {
		panic(fmt.Sprintf("%v: release of unknown device %s", ErrInvariantViolation, addr))
	}

	d.refs--
	if d.refs < 0 {
		panic(fmt.Sprintf("%v: negative refcount for %s", ErrInvariantViolation, addr))
	}

	logrus.WithFields(logrus.Fields{
		"function": "ReleaseReference",
		"address":  addr,
		"refs":     d.refs,
	}).Debug("Device reference released")

	if d.refs == 0 {
		if n := len(d.transports); n != 0 {
			panic(fmt.Sprintf("%v: destroying %s with %d live transports", ErrInvariantViolation, addr, n))
		}
		delete(dr.devices, addr)
		logrus.WithFields(logrus.Fields{
			"function": "ReleaseReference",
			"address":  addr,
		}).Info("Device destroyed")
	}
}

// Lookup returns the device at addr without taking a reference, or nil.
func (dr *DeviceRegistry) Lookup(addr string) *Device {
	dr.mu.RLock()
	defer dr.mu.RUnlock()
	return dr.devices[addr]
}

// Len returns the number of live devices.
func (dr *DeviceRegistry) Len() int {
	dr.mu.RLock()
	defer dr.mu.RUnlock()
	return len(dr.devices)
}
