package transport

// State is the pump state of a transport.
//
// The machine is Idle -> Streaming -> Idle (on release) -> Terminated
// (on destroy, reachable from either prior state). Idle is initial,
// Terminated is terminal.
type State int32

const (
	// StateIdle means the socket is invalid and the pump is polling.
	StateIdle State = iota
	// StateStreaming means the socket is valid and data is being paced.
	StateStreaming
	// StateTerminated means the pump has exited; the transport is dead.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Profile identifies the negotiated audio profile of a transport.
type Profile int

const (
	// ProfileA2DPSource streams encoded audio to the remote device.
	ProfileA2DPSource Profile = iota
	// ProfileA2DPSink receives encoded audio from the remote device.
	ProfileA2DPSink
	// ProfileSCO is the bidirectional voice profile (HSP/HFP),
	// carrying a speaker and a microphone path in one transport.
	ProfileSCO
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileA2DPSource:
		return "a2dp-source"
	case ProfileA2DPSink:
		return "a2dp-sink"
	case ProfileSCO:
		return "sco"
	default:
		return "unknown"
	}
}

// Change is a bit set of observable transport attributes that changed.
// It is delivered to the Notifier collaborator for propagation over IPC.
type Change uint

const (
	// ChangeSampling flags a sampling rate or channel change.
	ChangeSampling Change = 1 << iota
	// ChangeCodec flags a codec change.
	ChangeCodec
	// ChangeVolume flags a volume change.
	ChangeVolume
	// ChangeAvailability flags a stream or endpoint availability flip.
	ChangeAvailability
)

// Has reports whether all bits of c2 are set in c.
func (c Change) Has(c2 Change) bool { return c&c2 == c2 }
