package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Codec is the stateful encode/decode contract between a transport and its
// negotiated audio codec.
//
// A codec instance is owned by exactly one transport for the transport's
// entire life; its internal state is preserved across release/acquire cycles
// so a reconnect resumes the stream without a discontinuity. An error from
// Encode or Decode causes the pump to drop the current quantum and continue
// streaming; it is never fatal.
type Codec interface {
	// Name returns the codec identifier, e.g. "pcm" or "opus".
	Name() string

	// PCMFrameBytes returns the PCM quantum size in bytes the codec
	// consumes per Encode call and produces per Decode call.
	PCMFrameBytes() int

	// Encode converts one PCM quantum to its wire representation.
	Encode(pcm []byte) ([]byte, error)

	// Decode converts one wire frame back to PCM.
	Decode(data []byte) ([]byte, error)
}

// quantumDivisor sizes the default PCM quantum at 10 ms of audio.
const quantumDivisor = 100

// Transparent is a passthrough codec carrying raw PCM frames unchanged.
//
// Used for profiles whose payload is plain PCM and as the baseline codec in
// tests. The quantum is sized to 10 ms of audio at the configured format.
type Transparent struct {
	format  Format
	quantum int
}

// NewTransparent creates a passthrough codec for the given PCM format.
func NewTransparent(f Format) (*Transparent, error) {
	if !f.Valid() {
		logrus.WithFields(logrus.Fields{
			"function": "NewTransparent",
			"format":   f.String(),
		}).Error("PCM format validation failed")
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}

	t := &Transparent{
		format:  f,
		quantum: f.FramesToBytes(f.Rate / quantumDivisor),
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewTransparent",
		"format":        f.String(),
		"quantum_bytes": t.quantum,
	}).Debug("Transparent codec created")

	return t, nil
}

// Name returns "pcm".
func (t *Transparent) Name() string { return "pcm" }

// PCMFrameBytes returns the 10 ms quantum size in bytes.
func (t *Transparent) PCMFrameBytes() int { return t.quantum }

// Encode returns the PCM quantum unchanged.
func (t *Transparent) Encode(pcm []byte) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrEncodeFailed)
	}
	return pcm, nil
}

// Decode returns the wire frame unchanged.
func (t *Transparent) Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailed)
	}
	return data, nil
}
