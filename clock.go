package gpuparticles

import "time"

// Clock produces the simulation time passed to Advance. TimeScale speeds up
// or slows down the simulation relative to wall time.
type Clock struct {
	TimeScale float32

	elapsed float32
	last    time.Time
	now     func() time.Time
}

func NewClock(timeScale float32) *Clock {
	return &Clock{TimeScale: timeScale, now: time.Now}
}

// Tick adds dt, scaled, and returns the new time. Negative steps are ignored
// so the time never goes backwards.
func (c *Clock) Tick(dt time.Duration) float32 {
	if dt > 0 {
		c.elapsed += float32(dt.Seconds()) * c.TimeScale
	}
	return c.elapsed
}

// Step measures the wall time since the previous Step. The first call only
// starts the clock.
func (c *Clock) Step() float32 {
	if c.now == nil {
		c.now = time.Now
	}
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return c.elapsed
	}
	dt := now.Sub(c.last)
	c.last = now
	return c.Tick(dt)
}

func (c *Clock) Elapsed() float32 { return c.elapsed }
