package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	c := NewRealClock()
	start := c.Now()
	assert.GreaterOrEqual(t, c.Since(start), time.Duration(0))
}

func TestManualClock_Advance(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewManualClock(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, time.Duration(0), c.Since(start))

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
	assert.Equal(t, 1500*time.Millisecond, c.Since(start))
}
