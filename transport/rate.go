package transport

import "time"

// Synchronizer computes the pacing delay that keeps long-run audio
// throughput equal to a nominal sample rate.
//
// It tracks an anchor timestamp and the cumulative frames processed since
// the anchor; the delay for an iteration is the difference between where
// the stream should be (frames/rate) and where the clock actually is. The
// delay is never negative: after falling behind, iterations sleep zero
// until the stream has caught up. Convergence over a long window, not
// per-iteration exactness, is the contract.
//
// A Synchronizer is owned exclusively by the pump that created it and is
// reset whenever the transport re-enters streaming, so a reconnect never
// produces a burst of catch-up data.
type Synchronizer struct {
	tp     TimeProvider
	rate   int
	anchor time.Time
	frames int64
}

// NewSynchronizer creates a synchronizer for the nominal rate in frames per
// second. A nil TimeProvider selects the system clock.
func NewSynchronizer(rate int, tp TimeProvider) *Synchronizer {
	if tp == nil {
		tp = RealTimeProvider{}
	}
	s := &Synchronizer{tp: tp, rate: rate}
	s.Reset()
	return s
}

// Reset moves the anchor to now and zeroes the frame counter.
func (s *Synchronizer) Reset() {
	s.anchor = s.tp.Now()
	s.frames = 0
}

// Delay accounts for frames just transferred and returns how long the pump
// should sleep to stay on rate, clamped to zero.
func (s *Synchronizer) Delay(frames int) time.Duration {
	s.frames += int64(frames)
	target := time.Duration(s.frames * int64(time.Second) / int64(s.rate))
	elapsed := s.tp.Now().Sub(s.anchor)
	if d := target - elapsed; d > 0 {
		return d
	}
	return 0
}

// Frames returns the cumulative frames accounted since the last reset.
func (s *Synchronizer) Frames() int64 { return s.frames }
