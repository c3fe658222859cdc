package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_MinuteWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, 0, true)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest(now.Add(time.Duration(i)*time.Second)))
	}
	assert.False(t, rl.AllowRequest(now.Add(10*time.Second)))

	stats := rl.GetStats(now.Add(10 * time.Second))
	assert.Equal(t, 3, stats.RequestsLastMinute)
	assert.Equal(t, 0, stats.RemainingThisMinute)
	assert.Equal(t, 50, stats.RetryAfterSeconds)

	// the first request slides out of the window
	assert.True(t, rl.AllowRequest(now.Add(61*time.Second)))
}

func TestRateLimiter_HourWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0, 2, true)

	assert.True(t, rl.AllowRequest(now))
	assert.True(t, rl.AllowRequest(now.Add(5*time.Minute)))
	assert.False(t, rl.AllowRequest(now.Add(10*time.Minute)))
	assert.True(t, rl.AllowRequest(now.Add(61*time.Minute)))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)
	now := time.Now()
	for i := 0; i < 5; i++ {
		assert.True(t, rl.AllowRequest(now))
	}
	assert.False(t, rl.GetStats(now).Enabled)
}

func TestKeyedLimiter_SeparatesKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	k := NewKeyedLimiter(1, 10, true)

	ok, _ := k.Allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, stats := k.Allow("10.0.0.1", now.Add(time.Second))
	assert.False(t, ok)
	assert.Equal(t, 0, stats.RemainingThisMinute)

	ok, _ = k.Allow("10.0.0.2", now.Add(time.Second))
	assert.True(t, ok, "another caller has its own window")
}

func TestKeyedLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	k := NewKeyedLimiter(5, 5, true)

	k.Allow("a", now)
	k.Allow("b", now)
	assert.Equal(t, 2, k.Size())

	k.Allow("c", now.Add(2*time.Hour))
	assert.Equal(t, 1, k.Size())
}
