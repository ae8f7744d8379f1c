package auditlog

import (
	"sync"
	"time"
)

// RateLimiter caps how many log posts go out per sliding window. When
// the cap is hit, events are dropped instead of queued; the audit log
// is a mirror, not a ledger.
type RateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	hits   []time.Time

	now func() time.Time
}

// NewRateLimiter builds a limiter allowing max events per window.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{max: max, window: window, now: time.Now}
}

// Allow records one event and reports whether it fits in the window.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)
	kept := r.hits[:0]
	for _, t := range r.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.hits = kept

	if len(r.hits) >= r.max {
		return false
	}
	r.hits = append(r.hits, now)
	return true
}

// cooldownMap tracks per-key cooldowns, used to squelch voice event
// bursts from a single member.
type cooldownMap struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[string]time.Time

	now func() time.Time
}

func newCooldownMap(cooldown time.Duration) *cooldownMap {
	return &cooldownMap{cooldown: cooldown, last: make(map[string]time.Time), now: time.Now}
}

// Ready reports whether the key is past its cooldown and arms it.
func (c *cooldownMap) Ready(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.cooldown {
		return false
	}
	c.last[key] = now
	return true
}
