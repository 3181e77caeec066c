package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSineSourceFillsBuffer(t *testing.T) {
	src := NewSineSource(Voice16000Mono, 440)

	pcm := make([]byte, Voice16000Mono.FramesToBytes(160))
	n, err := src.Read(pcm)
	require.NoError(t, err)
	assert.Equal(t, len(pcm), n)

	// A 440 Hz tone over 160 frames at 16 kHz crosses zero; the buffer
	// must not be silence.
	silent := true
	for off := 0; off < len(pcm); off += 2 {
		if binary.LittleEndian.Uint16(pcm[off:]) != 0 {
			silent = false
			break
		}
	}
	assert.False(t, silent, "generated buffer should carry a waveform")
}

func TestSineSourcePhaseContinuity(t *testing.T) {
	// Two consecutive reads must continue the wave, not restart it: the
	// first sample of the second read differs from the first sample of
	// the first read (phase zero).
	src := NewSineSource(Voice8000Mono, 440)

	a := make([]byte, Voice8000Mono.FramesToBytes(80))
	b := make([]byte, Voice8000Mono.FramesToBytes(80))
	_, err := src.Read(a)
	require.NoError(t, err)
	_, err = src.Read(b)
	require.NoError(t, err)

	first := int16(binary.LittleEndian.Uint16(a))
	cont := int16(binary.LittleEndian.Uint16(b))
	assert.Equal(t, int16(0), first, "wave starts at phase zero")
	assert.NotEqual(t, first, cont, "second read continues the phase")
}

func TestSineSourceBitDepths(t *testing.T) {
	// Every bit depth Valid accepts must produce a full-width waveform;
	// silence for 8-bit PCM is the unsigned midpoint, all-zero otherwise.
	tests := []struct {
		name    string
		format  Format
		silence byte
	}{
		{"8bit mono", Format{Rate: 8000, Channels: 1, Bits: 8}, 128},
		{"16bit mono", Format{Rate: 8000, Channels: 1, Bits: 16}, 0},
		{"24bit stereo", Format{Rate: 48000, Channels: 2, Bits: 24}, 0},
		{"32bit stereo", Format{Rate: 48000, Channels: 2, Bits: 32}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.format.Valid())
			src := NewSineSource(tt.format, 440)

			pcm := make([]byte, tt.format.FramesToBytes(tt.format.Rate/100))
			n, err := src.Read(pcm)
			require.NoError(t, err)
			assert.Equal(t, len(pcm), n)

			// The most significant byte of the samples must carry the
			// wave, not leftover zeroes from a narrower write.
			sb := tt.format.Bits / 8
			msbWritten := false
			for off := sb - 1; off < len(pcm); off += sb {
				if pcm[off] != tt.silence {
					msbWritten = true
					break
				}
			}
			assert.True(t, msbWritten, "samples must be written at full width")
		})
	}
}

func TestSineSourceStereoInterleaving(t *testing.T) {
	src := NewSineSource(CD44100Stereo, 1000)

	pcm := make([]byte, CD44100Stereo.FramesToBytes(64))
	_, err := src.Read(pcm)
	require.NoError(t, err)

	// Both channels carry the same sample within a frame.
	for off := 0; off < len(pcm); off += 4 {
		l := binary.LittleEndian.Uint16(pcm[off:])
		r := binary.LittleEndian.Uint16(pcm[off+2:])
		require.Equal(t, l, r)
	}
}
