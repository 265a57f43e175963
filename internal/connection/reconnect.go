package connection

import "time"

// Backoff computes reconnection delays: base * 2^min(attempt, capExponent).
// Attempt is zero-based, so the first retry waits the base delay and the
// ceiling with the default cap exponent of 5 is 64x the base.
type Backoff struct {
	Base        time.Duration
	CapExponent int
}

// Delay returns the wait before the given zero-based attempt.
func (b Backoff) Delay(attempt int) time.Duration {
	exp := attempt
	if exp > b.CapExponent {
		exp = b.CapExponent
	}
	if exp < 0 {
		exp = 0
	}
	return b.Base * time.Duration(1<<uint(exp))
}
