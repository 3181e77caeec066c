// Package adapter implements the adapter and device registries for the
// bluepump daemon.
//
// The registry hierarchy mirrors the controller topology: one Adapter per
// local radio, each owning an address-keyed DeviceRegistry of remote peers.
// Devices are reference counted; every GetOrCreate must be matched by
// exactly one ReleaseReference, and the final release removes the device
// from the registry. A device may only disappear after all of its transports
// have been destroyed; violating that is a controller defect and panics.
//
// All registry mutation happens under a registry-wide lock on the controller
// goroutine; pump goroutines never touch these structures.
package adapter
