package transport

import "time"

// TimeProvider abstracts the clock used by the pump and the rate
// synchronizer. This allows injecting a mock provider for deterministic
// pacing tests.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses the calling goroutine for the given duration.
	Sleep(d time.Duration)
}

// RealTimeProvider implements TimeProvider using the actual system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time { return time.Now() }

// Sleep sleeps using the standard library.
func (RealTimeProvider) Sleep(d time.Duration) { time.Sleep(d) }
