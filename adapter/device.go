package adapter

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TransportHandle is the minimal view of a transport the device layer needs
// to track ownership. The transport package implements it; keeping it an
// interface here keeps this package a leaf.
type TransportHandle interface {
	// Key uniquely identifies the transport within its device,
	// e.g. "a2dp-source/sbc".
	Key() string
}

// Device represents one remote Bluetooth peer, keyed by hardware address.
//
// A device is created by DeviceRegistry.GetOrCreate with a reference count
// of one and lives until the matching final ReleaseReference. Its transport
// set must be empty by then; transports are destroyed by the controller
// before the last reference is dropped.
type Device struct {
	addr     string
	adapter  *Adapter
	registry *DeviceRegistry

	// Guarded by the owning registry's lock.
	refs       int
	transports map[string]TransportHandle
}

// Address returns the device hardware address, e.g. "AA:BB:CC:DD:EE:FF".
func (d *Device) Address() string { return d.addr }

// Adapter returns the local radio this device was seen on.
func (d *Device) Adapter() *Adapter { return d.adapter }

// AttachTransport records a transport as owned by this device.
// Attaching a second transport under the same key is a controller defect.
func (d *Device) AttachTransport(h TransportHandle) {
	d.registry.mu.Lock()
	defer d.registry.mu.Unlock()

	if _, exists := d.transports[h.Key()]; exists {
		panic(fmt.Sprintf("%v: transport %q already attached to %s", ErrInvariantViolation, h.Key(), d.addr))
	}
	d.transports[h.Key()] = h

	logrus.WithFields(logrus.Fields{
		"function":  "AttachTransport",
		"address":   d.addr,
		"transport": h.Key(),
		"count":     len(d.transports),
	}).Debug("Transport attached to device")
}

// DetachTransport removes a transport from this device's ownership set.
// Detaching a transport the device does not own is a controller defect.
func (d *Device) DetachTransport(h TransportHandle) {
	d.registry.mu.Lock()
	defer d.registry.mu.Unlock()

	if _, exists := d.transports[h.Key()]; !exists {
		panic(fmt.Sprintf("%v: transport %q not attached to %s", ErrInvariantViolation, h.Key(), d.addr))
	}
	delete(d.transports, h.Key())

	logrus.WithFields(logrus.Fields{
		"function":  "DetachTransport",
		"address":   d.addr,
		"transport": h.Key(),
		"count":     len(d.transports),
	}).Debug("Transport detached from device")
}

// TransportCount returns the number of transports currently attached.
func (d *Device) TransportCount() int {
	d.registry.mu.RLock()
	defer d.registry.mu.RUnlock()
	return len(d.transports)
}

// Transports returns a snapshot of the attached transport handles.
func (d *Device) Transports() []TransportHandle {
	d.registry.mu.RLock()
	defer d.registry.mu.RUnlock()

	out := make([]TransportHandle, 0, len(d.transports))
	for _, h := range d.transports {
		out = append(out, h)
	}
	return out
}

// Release drops one reference obtained from GetOrCreate. It forwards to the
// owning registry so the counter is never touched outside it.
func (d *Device) Release() {
	d.registry.ReleaseReference(d.addr)
}
