package domain

import "github.com/jonboulle/clockwork"

// clock supplies the reference date for alert day arithmetic. Tests freeze
// it via SetClock; production code runs on the real clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for reference dates. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
