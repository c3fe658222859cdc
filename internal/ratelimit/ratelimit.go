package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter tracks and enforces sliding-window limits for one caller
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool

	// Request tracking
	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the given limits.
// A zero limit disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		minuteWindow:      make([]time.Time, 0),
		hourWindow:        make([]time.Time, 0),
	}
}

// AllowRequest checks if a request is allowed based on rate limits
// Returns true if allowed, false if rate limit exceeded
func (rl *RateLimiter) AllowRequest(now time.Time) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)

	if rl.requestsPerMinute > 0 && len(rl.minuteWindow) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(rl.hourWindow) >= rl.requestsPerHour {
		return false
	}

	// Record the request
	rl.minuteWindow = append(rl.minuteWindow, now)
	rl.hourWindow = append(rl.hourWindow, now)

	return true
}

// idle reports whether the limiter holds no requests inside its windows
func (rl *RateLimiter) idle(now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)
	return len(rl.hourWindow) == 0
}

// cleanup removes expired entries from the time windows
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.minuteWindow = filterTimes(rl.minuteWindow, now.Add(-time.Minute))
	rl.hourWindow = filterTimes(rl.hourWindow, now.Add(-time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats(now time.Time) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(now)

	stats := Stats{
		Enabled:            true,
		RequestsLastMinute: len(rl.minuteWindow),
		RequestsLastHour:   len(rl.hourWindow),
		LimitPerMinute:     rl.requestsPerMinute,
		LimitPerHour:       rl.requestsPerHour,
	}
	if rl.requestsPerMinute > 0 {
		stats.RemainingThisMinute = max(0, rl.requestsPerMinute-len(rl.minuteWindow))
	}
	if rl.requestsPerHour > 0 {
		stats.RemainingThisHour = max(0, rl.requestsPerHour-len(rl.hourWindow))
	}
	if stats.RemainingThisMinute == 0 && len(rl.minuteWindow) > 0 && rl.requestsPerMinute > 0 {
		stats.RetryAfterSeconds = secondsUntil(now, rl.minuteWindow[0].Add(time.Minute))
	}
	if stats.RemainingThisHour == 0 && len(rl.hourWindow) > 0 && rl.requestsPerHour > 0 {
		stats.RetryAfterSeconds = max(stats.RetryAfterSeconds, secondsUntil(now, rl.hourWindow[0].Add(time.Hour)))
	}
	return stats
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
	RetryAfterSeconds   int  `json:"retry_after_seconds,omitempty"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.minuteWindow = make([]time.Time, 0)
	rl.hourWindow = make([]time.Time, 0)
}

func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
