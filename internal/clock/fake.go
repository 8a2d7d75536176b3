package clock

import "time"

// FakeClock is a Clock pinned to a fixed instant. It only moves when a test
// advances it, which keeps effective-dated lookups deterministic.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t, normalized to UTC.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

// Now returns the pinned instant.
func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance shifts the pinned instant by d. A negative d moves it backwards.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
