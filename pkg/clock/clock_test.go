package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockDefaultsToWallClock(t *testing.T) {
	c := New()
	assert.False(t, c.Overridden())

	before := time.Now().UTC().Add(-time.Second)
	now := c.Now()
	after := time.Now().UTC().Add(time.Second)
	assert.True(t, now.After(before) && now.Before(after))
}

func TestClockOverrideRoundTrip(t *testing.T) {
	c := New()
	pinned := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	c.SetOverride(pinned)
	require.True(t, c.Overridden())
	assert.Equal(t, pinned, c.Now())
	// Stable across reads while pinned.
	assert.Equal(t, pinned, c.Now())

	c.ClearOverride()
	assert.False(t, c.Overridden())
	assert.WithinDuration(t, time.Now().UTC(), c.Now(), time.Second)
}
