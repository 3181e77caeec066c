package ipc

import (
	"fmt"
	"os"

	"github.com/aurelab/bluepump/transport"
	dbus "github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const (
	bluezService        = "org.bluez"
	mediaTransportIface = "org.bluez.MediaTransport1"
)

// BlueZBackend implements transport.Backend against a BlueZ media transport
// object. Acquire asks BlueZ for the kernel socket of the negotiated stream
// and returns it with the negotiated MTUs; Release hands the stream back.
//
// One backend is bound to one org.bluez.MediaTransport1 object path, the
// same way a transport is bound to one negotiated stream.
type BlueZBackend struct {
	conn *dbus.Conn
	path dbus.ObjectPath
}

// NewBlueZBackend creates a backend for the media transport at path. Pass
// an existing bus connection to share it; nil opens a new one.
func NewBlueZBackend(conn *dbus.Conn, path dbus.ObjectPath) (*BlueZBackend, error) {
	if conn == nil {
		c, err := dbus.SystemBus()
		if err != nil {
			return nil, fmt.Errorf("connect system bus: %w", err)
		}
		conn = c
	}
	if !path.IsValid() {
		return nil, fmt.Errorf("invalid media transport path %q", path)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewBlueZBackend",
		"path":     string(path),
	}).Info("BlueZ media transport backend created")

	return &BlueZBackend{conn: conn, path: path}, nil
}

// Acquire calls MediaTransport1.Acquire and wraps the returned descriptor.
func (b *BlueZBackend) Acquire() (*transport.Socket, error) {
	obj := b.conn.Object(bluezService, b.path)

	var fd dbus.UnixFD
	var readMTU, writeMTU uint16
	if err := obj.Call(mediaTransportIface+".Acquire", 0).Store(&fd, &readMTU, &writeMTU); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "BlueZBackend.Acquire",
			"path":     string(b.path),
			"error":    err.Error(),
		}).Error("Media transport acquisition failed")
		return nil, fmt.Errorf("bluez acquire %s: %w", b.path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "BlueZBackend.Acquire",
		"path":      string(b.path),
		"read_mtu":  readMTU,
		"write_mtu": writeMTU,
	}).Info("Media transport acquired")

	return &transport.Socket{
		Conn:     os.NewFile(uintptr(fd), "bt-stream"),
		ReadMTU:  int(readMTU),
		WriteMTU: int(writeMTU),
	}, nil
}

// Release hands the stream back to BlueZ and closes the descriptor.
func (b *BlueZBackend) Release(s *transport.Socket) error {
	obj := b.conn.Object(bluezService, b.path)
	call := obj.Call(mediaTransportIface+".Release", 0)

	closeErr := s.Close()

	if call.Err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "BlueZBackend.Release",
			"path":     string(b.path),
			"error":    call.Err.Error(),
		}).Warn("Media transport release failed")
		return fmt.Errorf("bluez release %s: %w", b.path, call.Err)
	}
	return closeErr
}
