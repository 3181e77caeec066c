package audio

import "errors"

// Sentinel errors for audio codec operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrShortFrame indicates the input did not contain a whole codec frame.
	ErrShortFrame = errors.New("input shorter than one codec frame")

	// ErrDecodeFailed indicates the codec could not decode the frame.
	ErrDecodeFailed = errors.New("frame decode failed")

	// ErrEncodeFailed indicates the codec could not encode the frame.
	ErrEncodeFailed = errors.New("frame encode failed")

	// ErrInvalidFormat indicates an unusable PCM format was supplied.
	ErrInvalidFormat = errors.New("invalid PCM format")
)
