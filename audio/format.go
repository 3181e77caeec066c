package audio

import "fmt"

// Format describes a PCM stream: sampling rate in frames per second,
// interleaved channel count, and bits per sample.
type Format struct {
	Rate     int
	Channels int
	Bits     int
}

// CD44100Stereo is the canonical A2DP source format.
var CD44100Stereo = Format{Rate: 44100, Channels: 2, Bits: 16}

// Voice8000Mono is the canonical narrowband voice (CVSD) format.
var Voice8000Mono = Format{Rate: 8000, Channels: 1, Bits: 16}

// Voice16000Mono is the canonical wideband voice (mSBC) format.
var Voice16000Mono = Format{Rate: 16000, Channels: 1, Bits: 16}

// FrameBytes returns the size in bytes of one interleaved PCM frame.
func (f Format) FrameBytes() int {
	return f.Channels * f.Bits / 8
}

// BytesToFrames converts a byte count to whole PCM frames.
func (f Format) BytesToFrames(n int) int {
	if fb := f.FrameBytes(); fb > 0 {
		return n / fb
	}
	return 0
}

// FramesToBytes converts a PCM frame count to bytes.
func (f Format) FramesToBytes(frames int) int {
	return frames * f.FrameBytes()
}

// Valid reports whether the format describes a usable PCM stream.
func (f Format) Valid() bool {
	return f.Rate > 0 && f.Channels > 0 && (f.Bits == 8 || f.Bits == 16 || f.Bits == 24 || f.Bits == 32)
}

// String returns a compact human-readable description, e.g. "44100Hz/2ch/16bit".
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.Rate, f.Channels, f.Bits)
}
