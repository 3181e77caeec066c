// Package transport implements the transport lifecycle manager and the
// real-time audio pump of the bluepump daemon.
//
// A Transport is one negotiated Bluetooth audio stream bound to a device.
// It owns its pump goroutine, its PCM endpoint(s), and the profile-specific
// acquire/release capability pair bound at creation. The pump is spawned
// exactly once when the transport is created and joined exactly once when it
// is destroyed; release only idles it, preserving codec state for the next
// acquire.
//
// The socket is the only field crossing goroutine ownership: the controller
// writes it through Acquire/Release/Destroy and the pump reads it, both
// through an atomic pointer, so a half-updated descriptor is never
// observable. All other transport state is either controller-owned under the
// transport mutex or private to the pump.
//
// Cancellation is cooperative. The pump checks its cancel signal only at the
// top of a loop iteration, so an in-flight quantum always completes; Destroy
// closes the socket and endpoints first to unblock any pending I/O, then
// blocks until the pump has fully exited before detaching from the device.
package transport
