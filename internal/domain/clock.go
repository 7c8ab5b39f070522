package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source for query windows so tests can freeze "now" via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used by ComputeWindow and Now. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current UTC time from the package clock.
func Now() time.Time {
	return clock.Now().UTC()
}
