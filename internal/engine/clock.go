package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps records and rotation
// steps.
//
// Seq values order everything the simulation emits. Wall time never does.
// Clock is safe for concurrent reads, though only the goroutine applying
// commands advances it.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start. Used to continue a
// stored trace log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
