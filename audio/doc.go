// Package audio provides the PCM format model and codec contract for the
// bluepump audio bridge.
//
// This package defines the encode/decode contract the transport pump relies
// on, together with the built-in codecs: a transparent passthrough codec
// used for raw PCM profiles and testing, and an Opus vendor codec built on
// the pure Go pion/opus decoder.
//
// Codec state is owned by the transport that created it and survives
// release/acquire cycles; a codec error never terminates a stream, it only
// drops the quantum being processed.
package audio
