package clock

import (
	"sync/atomic"
	"time"
)

// Clock yields the server's notion of "now". An admin can swap in a fixed
// override so that time-gated behaviour (vote windows) can be exercised
// deterministically; clearing the override reverts to the wall clock.
// Override state lives for the process lifetime only.
type Clock struct {
	override atomic.Pointer[time.Time]
}

// New returns a Clock with no override set.
func New() *Clock {
	return &Clock{}
}

// Now returns the override if one is set, otherwise the wall clock in UTC.
func (c *Clock) Now() time.Time {
	if t := c.override.Load(); t != nil {
		return *t
	}
	return time.Now().UTC()
}

// SetOverride pins Now to the given instant.
func (c *Clock) SetOverride(t time.Time) {
	u := t.UTC()
	c.override.Store(&u)
}

// ClearOverride reverts Now to the wall clock.
func (c *Clock) ClearOverride() {
	c.override.Store(nil)
}

// Overridden reports whether an override is active.
func (c *Clock) Overridden() bool {
	return c.override.Load() != nil
}
