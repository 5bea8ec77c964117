package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockNowUTC(t *testing.T) {
	t.Parallel()

	before := time.Now().UTC().Add(-time.Second)
	got := New().Now()
	after := time.Now().UTC().Add(time.Second)

	require.Equal(t, time.UTC, got.Location())
	assert.True(t, got.After(before) && got.Before(after), "got %v", got)
}

func TestFixed(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("AEST", 10*3600)
	at := time.Date(2024, 3, 9, 22, 4, 5, 0, zone)
	clk := Fixed(at)

	assert.Equal(t, time.Date(2024, 3, 9, 12, 4, 5, 0, time.UTC), clk.Now())
	assert.Equal(t, clk.Now(), clk.Now())
}

func TestNilClockReadsWallClock(t *testing.T) {
	t.Parallel()

	var clk *Clock
	assert.False(t, clk.Now().IsZero())
}
