package ipc

import (
	"github.com/aurelab/bluepump/transport"
	dbus "github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const (
	// BusName is the well-known name the daemon claims on the system bus.
	BusName = "com.aurelab.BluePump"

	// transportIface is the interface transport change signals are
	// emitted under.
	transportIface = "com.aurelab.BluePump.Transport1"

	// basePath is the object path prefix for emitted signals.
	basePath = dbus.ObjectPath("/com/aurelab/bluepump")
)

// DBusNotifier implements transport.Notifier by emitting a Changed signal
// on the system bus for every transport state change. Emission is
// fire-and-forget; a failed emit is logged and dropped.
type DBusNotifier struct {
	conn *dbus.Conn
}

// NewDBusNotifier connects to the system bus and claims the daemon name.
// Pass an existing connection to share a bus between collaborators; nil
// opens a new one.
func NewDBusNotifier(conn *dbus.Conn) (*DBusNotifier, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewDBusNotifier",
		"name":     BusName,
	}).Info("Creating D-Bus notifier")

	if conn == nil {
		c, err := dbus.SystemBus()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "NewDBusNotifier",
				"error":    err.Error(),
			}).Error("System bus connection failed")
			return nil, err
		}
		conn = c
	}

	if _, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue); err != nil {
		// Running without the well-known name still delivers signals;
		// consumers just cannot address the daemon by name.
		logrus.WithFields(logrus.Fields{
			"function": "NewDBusNotifier",
			"name":     BusName,
			"error":    err.Error(),
		}).Warn("Bus name request failed")
	}

	return &DBusNotifier{conn: conn}, nil
}

// TransportChanged emits the change event for IPC consumers.
func (n *DBusNotifier) TransportChanged(t *transport.Transport, changes transport.Change) {
	fields := changedFields(changes)

	body := map[string]dbus.Variant{
		"Device":  dbus.MakeVariant(t.Device().Address()),
		"Profile": dbus.MakeVariant(t.Profile().String()),
		"Codec":   dbus.MakeVariant(t.Codec().Name()),
		"State":   dbus.MakeVariant(t.State().String()),
		"Volume":  dbus.MakeVariant(uint8(t.Volume())),
	}

	if err := n.conn.Emit(basePath, transportIface+".Changed", fields, body); err != nil {
		// Fire-and-forget: the core never depends on delivery.
		logrus.WithFields(logrus.Fields{
			"function": "TransportChanged",
			"key":      t.Key(),
			"error":    err.Error(),
		}).Warn("Change signal emission failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "TransportChanged",
		"key":      t.Key(),
		"fields":   fields,
	}).Trace("Change signal emitted")
}

// changedFields maps the change bit set to its wire field names.
func changedFields(c transport.Change) []string {
	var out []string
	if c.Has(transport.ChangeSampling) {
		out = append(out, "SAMPLING")
	}
	if c.Has(transport.ChangeCodec) {
		out = append(out, "CODEC")
	}
	if c.Has(transport.ChangeVolume) {
		out = append(out, "VOLUME")
	}
	if c.Has(transport.ChangeAvailability) {
		out = append(out, "AVAILABILITY")
	}
	return out
}
