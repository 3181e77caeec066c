package audio

import (
	"encoding/binary"
	"math"

	"github.com/sirupsen/logrus"
)

// SineSource generates a continuous PCM sine wave.
//
// Source transports with no connected client endpoint pull their PCM from a
// SineSource so the stream stays paced and audible end to end, mirroring the
// mock-server behavior of the original daemon's test harness. The phase is
// carried across reads so consecutive quanta are continuous.
type SineSource struct {
	format Format
	freq   float64
	amp    float64
	phase  float64
}

// NewSineSource creates a generator producing a tone at the given frequency.
func NewSineSource(f Format, freq float64) *SineSource {
	logrus.WithFields(logrus.Fields{
		"function":  "NewSineSource",
		"format":    f.String(),
		"frequency": freq,
	}).Debug("Sine source created")

	return &SineSource{
		format: f,
		freq:   freq,
		amp:    0.25,
	}
}

// Read fills pcm with the next span of the wave. It always fills the whole
// slice and never fails; the slice length should be a multiple of the frame
// size.
func (s *SineSource) Read(pcm []byte) (int, error) {
	step := 2 * math.Pi * s.freq / float64(s.format.Rate)
	fb := s.format.FrameBytes()
	sb := s.format.Bits / 8

	for off := 0; off+fb <= len(pcm); off += fb {
		v := s.amp * math.Sin(s.phase)
		for ch := 0; ch < s.format.Channels; ch++ {
			s.putSample(pcm[off+sb*ch:], v)
		}
		s.phase += step
		if s.phase > 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
	return len(pcm), nil
}

// putSample writes one normalized sample at the format's bit depth.
// 8-bit PCM is unsigned with a midpoint of 128; wider depths are signed
// little-endian.
func (s *SineSource) putSample(dst []byte, v float64) {
	switch s.format.Bits {
	case 8:
		dst[0] = byte(int(v*math.MaxInt8) + 128)
	case 16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v*math.MaxInt16)))
	case 24:
		n := int32(v * (1<<23 - 1))
		dst[0] = byte(n)
		dst[1] = byte(n >> 8)
		dst[2] = byte(n >> 16)
	case 32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v*math.MaxInt32)))
	}
}
