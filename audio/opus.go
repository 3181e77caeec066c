package audio

import (
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// OpusCodec is the Opus vendor codec used by A2DP transports that negotiated
// the Opus vendor capability.
//
// Decoding uses the pure Go pion/opus decoder. The encode side is a PCM
// passthrough: encoding support lands once a pure Go Opus encoder is
// available, and the passthrough keeps source transports functional in the
// meantime.
type OpusCodec struct {
	format  Format
	quantum int
	decoder opus.Decoder
	out     []byte
}

// NewOpusCodec creates an Opus codec instance for the given PCM format.
//
// The decoder is stateful and must not be shared between transports.
func NewOpusCodec(f Format) (*OpusCodec, error) {
	if !f.Valid() {
		logrus.WithFields(logrus.Fields{
			"function": "NewOpusCodec",
			"format":   f.String(),
		}).Error("PCM format validation failed")
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}

	c := &OpusCodec{
		format:  f,
		quantum: f.FramesToBytes(f.Rate / quantumDivisor),
		decoder: opus.NewDecoder(),
		// Opus frames decode to at most 120 ms of audio.
		out: make([]byte, f.FramesToBytes(f.Rate*120/1000)),
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewOpusCodec",
		"format":        f.String(),
		"quantum_bytes": c.quantum,
	}).Info("Opus codec created")

	return c, nil
}

// Name returns "opus".
func (c *OpusCodec) Name() string { return "opus" }

// PCMFrameBytes returns the 10 ms quantum size in bytes.
func (c *OpusCodec) PCMFrameBytes() int { return c.quantum }

// Encode passes PCM through unchanged until a pure Go encoder is wired in.
func (c *OpusCodec) Encode(pcm []byte) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrEncodeFailed)
	}
	return pcm, nil
}

// Decode decodes one Opus frame to PCM.
func (c *OpusCodec) Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailed)
	}

	bandwidth, isStereo, err := c.decoder.Decode(data, c.out)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "OpusCodec.Decode",
			"data_size": len(data),
			"error":     err.Error(),
		}).Warn("Opus frame decode failed")
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "OpusCodec.Decode",
		"bandwidth": bandwidth,
		"stereo":    isStereo,
		"data_size": len(data),
	}).Trace("Opus frame decoded")

	n := decodedBytes(bandwidth, isStereo)
	if n <= 0 || n > len(c.out) {
		n = c.quantum
	}
	pcm := make([]byte, n)
	copy(pcm, c.out[:n])
	return pcm, nil
}

// decodedBytes estimates the PCM payload of one decoded 20 ms Opus frame
// from its bandwidth and channel layout.
func decodedBytes(bw opus.Bandwidth, stereo bool) int {
	var rate int
	switch bw {
	case opus.BandwidthNarrowband:
		rate = 8000
	case opus.BandwidthMediumband:
		rate = 12000
	case opus.BandwidthWideband:
		rate = 16000
	case opus.BandwidthSuperwideband:
		rate = 24000
	case opus.BandwidthFullband:
		rate = 48000
	default:
		return 0
	}
	frames := rate * 20 / 1000
	bytes := frames * 2
	if stereo {
		bytes *= 2
	}
	return bytes
}
