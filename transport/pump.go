package transport

import (
	"time"

	"github.com/sirupsen/logrus"
)

// idlePollInterval bounds how long the pump sleeps between socket checks
// while idle. No data is generated or dropped in the idle branch.
const idlePollInterval = 50 * time.Millisecond

// pumpLoop is the per-transport worker. It runs for the transport's entire
// life: spawned by New, exited only through the cancel signal, joined by
// Destroy. One iteration is one cancellation check plus one data quantum.
func (t *Transport) pumpLoop() {
	defer close(t.done)

	logrus.WithFields(logrus.Fields{
		"function": "pumpLoop",
		"key":      t.Key(),
	}).Debug("Pump started")

	pacer := NewSynchronizer(t.format.Rate, t.tp)
	pcm := make([]byte, t.codec.PCMFrameBytes())
	var rx []byte
	streaming := false

	for {
		// The top of the iteration is the only cancellation point; a
		// quantum in flight always completes before this is honored.
		select {
		case <-t.cancel:
			t.setState(StateTerminated, streaming)
			logrus.WithFields(logrus.Fields{
				"function": "pumpLoop",
				"key":      t.Key(),
				"frames":   pacer.Frames(),
			}).Debug("Pump terminated")
			return
		default:
		}

		s := t.sock.Load()
		if s == nil {
			if streaming {
				streaming = false
				t.setState(StateIdle, true)
			}
			t.tp.Sleep(idlePollInterval)
			continue
		}

		if !streaming {
			streaming = true
			// Re-anchoring here prevents a catch-up burst after a
			// reconnect.
			pacer.Reset()
			t.setState(StateStreaming, true)
		}

		frames, err := t.transferQuantum(s, pcm, &rx)
		if err != nil {
			// Socket failure mid-stream is a remote disconnect:
			// retire the socket and fall back to idle polling.
			// Codec state is untouched.
			logrus.WithFields(logrus.Fields{
				"function": "pumpLoop",
				"key":      t.Key(),
				"error":    err.Error(),
			}).Warn("Stream I/O failed, treating as remote disconnect")
			t.dropSocket(s)
			continue
		}

		if d := pacer.Delay(frames); d > 0 {
			t.tp.Sleep(d)
		}
	}
}

// setState publishes a pump state transition and, when the availability of
// the stream flipped, emits a change event.
func (t *Transport) setState(st State, wasStreaming bool) {
	old := State(t.state.Swap(int32(st)))
	if old == st {
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "setState",
		"key":      t.Key(),
		"from":     old.String(),
		"to":       st.String(),
	}).Debug("Pump state changed")

	if wasStreaming || st == StateStreaming {
		t.notify(ChangeAvailability)
	}
}

// transferQuantum moves one codec-frame-sized unit of audio. A returned
// error always means socket I/O failed; codec and endpoint failures are
// absorbed here (quantum dropped or generator substituted) because they are
// not fatal to the stream.
func (t *Transport) transferQuantum(s *Socket, pcm []byte, rx *[]byte) (int, error) {
	switch t.profile {
	case ProfileA2DPSource:
		return t.sourceQuantum(s, pcm)
	case ProfileA2DPSink:
		return t.sinkQuantum(s, rx)
	case ProfileSCO:
		// Voice is full duplex: the speaker leg is paced by the
		// remote's constant bitrate, the microphone leg by the rate
		// synchronizer.
		if _, err := t.sinkQuantum(s, rx); err != nil {
			return 0, err
		}
		return t.sourceQuantum(s, pcm)
	default:
		return 0, nil
	}
}

// sourceQuantum reads one PCM quantum from the capture endpoint (or the
// synthetic generator when no client is attached), encodes it, and writes
// the result to the socket in MTU-sized chunks.
func (t *Transport) sourceQuantum(s *Socket, pcm []byte) (int, error) {
	if ep := t.capture; ep != nil && ep.IsOpen() {
		if err := ep.ReadFull(pcm); err != nil {
			// Client went away; not an error to the pump.
			logrus.WithFields(logrus.Fields{
				"function": "sourceQuantum",
				"key":      t.Key(),
				"error":    err.Error(),
			}).Debug("Capture client lost, switching to generator")
			ep.Disconnect()
			_, _ = t.tone.Read(pcm)
		}
	} else {
		_, _ = t.tone.Read(pcm)
	}

	frames := t.format.BytesToFrames(len(pcm))

	enc, err := t.codec.Encode(pcm)
	if err != nil {
		// Quantum dropped, streaming continues.
		logrus.WithFields(logrus.Fields{
			"function": "sourceQuantum",
			"key":      t.Key(),
			"error":    err.Error(),
		}).Warn("Encode failed, dropping quantum")
		return frames, nil
	}

	mtu := s.WriteMTU
	if mtu <= 0 {
		mtu = len(enc)
	}
	for off := 0; off < len(enc); {
		n := len(enc) - off
		if n > mtu {
			n = mtu
		}
		w, err := s.Conn.Write(enc[off : off+n])
		if err != nil {
			return frames, err
		}
		off += w
	}
	return frames, nil
}

// sinkQuantum reads one frame from the socket, decodes it, and writes the
// PCM to the playback endpoint; decoded audio is discarded while no client
// is attached.
func (t *Transport) sinkQuantum(s *Socket, rx *[]byte) (int, error) {
	mtu := s.ReadMTU
	if mtu <= 0 {
		mtu = defaultPipeMTU
	}
	if len(*rx) < mtu {
		*rx = make([]byte, mtu)
	}
	n, err := s.Conn.Read(*rx)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	pcm, err := t.codec.Decode((*rx)[:n])
	if err != nil {
		// Malformed frame: quantum dropped, streaming continues.
		logrus.WithFields(logrus.Fields{
			"function": "sinkQuantum",
			"key":      t.Key(),
			"size":     n,
			"error":    err.Error(),
		}).Warn("Decode failed, dropping quantum")
		return 0, nil
	}

	if ep := t.playback; ep != nil && ep.IsOpen() {
		if err := ep.WriteFull(pcm); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "sinkQuantum",
				"key":      t.Key(),
				"error":    err.Error(),
			}).Debug("Playback client lost, discarding audio")
			ep.Disconnect()
		}
	}
	return t.format.BytesToFrames(len(pcm)), nil
}
