// Package system supplies the time a run starts, finishes and stamps its tables with.
package system

import "time"

// Clock implements crawler.Clock. The zero value follows the wall clock; a
// frozen clock makes the "Last Updated (UTC)" stamp reproducible.
type Clock struct {
	frozen time.Time
}

// New returns a wall clock.
func New() *Clock {
	return &Clock{}
}

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) *Clock {
	return &Clock{frozen: t.UTC()}
}

// Now returns the run time in UTC.
func (c *Clock) Now() time.Time {
	if c != nil && !c.frozen.IsZero() {
		return c.frozen
	}
	return time.Now().UTC()
}
