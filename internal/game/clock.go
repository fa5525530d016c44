package game

import "sync/atomic"

// Clock numbers the events of one game. Sequence numbers start at 1 and
// only play records advance the clock; substitutions and comments share the
// number of the play they precede or follow.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int {
	return int(c.seq.Add(1))
}

// Current returns the last number handed out, 0 before the first play.
func (c *Clock) Current() int {
	return int(c.seq.Load())
}
