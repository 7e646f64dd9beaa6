package transmitter

import (
	"time"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Timing the monitor's receiver needs between and after frames.
const (
	// Spacing is the minimum gap after any frame without its own policy.
	Spacing = 25 * time.Millisecond
	// EncoderSettle follows the IEN, encoder, ISW bracket.
	EncoderSettle = 100 * time.Millisecond
)

// Policy is what happens on the link after a frame is written.
type Policy struct {
	// Settle is slept after the frame, and after each reselect frame.
	Settle time.Duration
	// Reselect is the number of ISW frames written after the frame.
	Reselect int
}

var policies = map[string]Policy{
	protocol.Menu:  {Settle: 500 * time.Millisecond},
	protocol.Power: {Settle: 500 * time.Millisecond},
	// The shift latch leaves the monitor off the switches bank; ISW twice
	// brings it back.
	protocol.Shift: {Settle: 200 * time.Millisecond, Reselect: 2},
}

// PolicyFor returns the post-emission policy for the named frame.
func PolicyFor(name string) Policy {
	if p, ok := policies[name]; ok {
		return p
	}
	return Policy{Settle: Spacing}
}
