package transport

// Notifier consumes discrete state-change notifications for propagation
// over IPC. Calls are fire-and-forget: the core never blocks on or inspects
// the outcome, so implementations must return promptly and do their own
// queuing if delivery can stall.
type Notifier interface {
	TransportChanged(t *Transport, changes Change)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(t *Transport, changes Change)

// TransportChanged calls f.
func (f NotifierFunc) TransportChanged(t *Transport, changes Change) { f(t, changes) }

// NopNotifier discards all notifications.
type NopNotifier struct{}

// TransportChanged does nothing.
func (NopNotifier) TransportChanged(*Transport, Change) {}
