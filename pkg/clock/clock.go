// Package clock abstracts wall-clock access so decay, cooldown, and
// rotation logic can be tested with fixed or advancing time.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// Stepped is a Clock that only moves when told to. Safe for concurrent use.
type Stepped struct {
	mu  sync.Mutex
	now time.Time
}

// NewStepped creates a Stepped clock starting at t.
func NewStepped(t time.Time) *Stepped {
	return &Stepped{now: t}
}

// Now returns the current stepped time.
func (c *Stepped) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Stepped) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to t.
func (c *Stepped) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
