package ratelimit

import (
	"sync"
	"time"
)

// KeyedLimiter keeps one RateLimiter per key (client IP for login)
type KeyedLimiter struct {
	perMinute int
	perHour   int
	enabled   bool

	mu        sync.Mutex
	limiters  map[string]*RateLimiter
	lastSweep time.Time
}

// NewKeyedLimiter creates a limiter whose keys each get the same limits
func NewKeyedLimiter(perMinute, perHour int, enabled bool) *KeyedLimiter {
	return &KeyedLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		enabled:   enabled,
		limiters:  make(map[string]*RateLimiter),
	}
}

// Allow records a request for key and reports whether it is within limits
func (k *KeyedLimiter) Allow(key string, now time.Time) (bool, Stats) {
	if !k.enabled {
		return true, Stats{Enabled: false}
	}
	rl := k.limiterFor(key, now)
	ok := rl.AllowRequest(now)
	return ok, rl.GetStats(now)
}

// Stats returns the current window counters for key
func (k *KeyedLimiter) Stats(key string, now time.Time) Stats {
	if !k.enabled {
		return Stats{Enabled: false}
	}
	return k.limiterFor(key, now).GetStats(now)
}

// Size returns the number of tracked keys
func (k *KeyedLimiter) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *KeyedLimiter) limiterFor(key string, now time.Time) *RateLimiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	// Drop idle callers at most once a minute so the map stays bounded
	if now.Sub(k.lastSweep) >= time.Minute {
		for other, rl := range k.limiters {
			if other != key && rl.idle(now) {
				delete(k.limiters, other)
			}
		}
		k.lastSweep = now
	}

	rl, ok := k.limiters[key]
	if !ok {
		rl = NewRateLimiter(k.perMinute, k.perHour, true)
		k.limiters[key] = rl
	}
	return rl
}
