package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTickExpiry(t *testing.T) {
	var clock Clock
	clock.SetBudget(3)
	clock.SetRemaining(3)
	clock.Start()

	assert.False(t, clock.Tick())
	assert.False(t, clock.Tick())
	require.Equal(t, 1, clock.Time())

	// The draining tick reports expiry exactly once and stops the clock.
	assert.True(t, clock.Tick())
	assert.Equal(t, 0, clock.Time())
	assert.False(t, clock.Running())

	assert.False(t, clock.Tick())
	assert.Equal(t, 0, clock.Time())
}

func TestClockTickWhilePaused(t *testing.T) {
	var clock Clock
	clock.SetBudget(10)
	clock.SetRemaining(10)

	assert.False(t, clock.Tick())
	assert.Equal(t, 10, clock.Time())
}

func TestClockStartDrained(t *testing.T) {
	var clock Clock
	clock.SetBudget(5)
	clock.SetRemaining(0)

	clock.Start()
	assert.False(t, clock.Running())
}

func TestClockReset(t *testing.T) {
	var clock Clock
	clock.SetBudget(120)
	clock.SetRemaining(45)
	clock.Start()

	clock.Reset()
	assert.Equal(t, 120, clock.Time())
	assert.False(t, clock.Running())

	// Resetting a full, stopped clock changes nothing.
	clock.Reset()
	assert.Equal(t, 120, clock.Time())
	assert.False(t, clock.Running())
}

func TestClockSetBudgetClampsDown(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		newBudget int
		wantTime  int
	}{
		{name: "shrinks remaining", remaining: 1200, newBudget: 600, wantTime: 600},
		{name: "never tops up", remaining: 300, newBudget: 1500, wantTime: 300},
		{name: "equal budget untouched", remaining: 600, newBudget: 600, wantTime: 600},
		{name: "negative budget treated as zero", remaining: 600, newBudget: -5, wantTime: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var clock Clock
			clock.SetBudget(1500)
			clock.SetRemaining(tt.remaining)
			clock.Start()

			clock.SetBudget(tt.newBudget)
			assert.Equal(t, tt.wantTime, clock.Time())
			assert.Equal(t, maxInt(tt.newBudget, 0), clock.MaxTime())
		})
	}
}

func TestClockSetRemainingBounds(t *testing.T) {
	var clock Clock
	clock.SetBudget(60)

	clock.SetRemaining(90)
	assert.Equal(t, 60, clock.Time())

	clock.SetRemaining(-3)
	assert.Equal(t, 0, clock.Time())

	clock.SetRemaining(30)
	clock.Start()
	clock.SetRemaining(0)
	assert.False(t, clock.Running(), "a drained clock must not keep running")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
