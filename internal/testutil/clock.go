package testutil

import "sync/atomic"

// RunClock hands out query run sequence numbers from a known start, so
// the seq columns of a test store are the same on every run.
// It satisfies store.Clock.
type RunClock struct {
	seq atomic.Int64
}

// NewRunClock returns a clock whose first Next returns start+1.
func NewRunClock(start int64) *RunClock {
	c := &RunClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *RunClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last number handed out, or the start value.
func (c *RunClock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock to start.
func (c *RunClock) Reset(start int64) {
	c.seq.Store(start)
}
