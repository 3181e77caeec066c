// Package ipc bridges the bluepump core onto the D-Bus system bus.
//
// It provides the two production collaborators the transport engine treats
// as external: a Notifier that re-emits transport change events as D-Bus
// signals for IPC consumers, and a profile Backend that acquires the live
// Bluetooth socket from BlueZ through org.bluez.MediaTransport1.
//
// Both are fire-and-forget from the core's point of view: signal emission
// failures are logged and dropped, never surfaced to the pump.
package ipc
