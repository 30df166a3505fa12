package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window counter keyed by string.
type RateLimiter struct {
	events map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
}

func New(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		events: make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (rl *RateLimiter) Limit() int { return rl.limit }

// Allow records an event for key if the window still has room.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.pruneLocked(key)
	if len(valid) >= rl.limit {
		return false
	}

	rl.events[key] = append(valid, rl.now())
	return true
}

// Blocked reports whether key has used up the window without recording
// anything. Pair it with Record to count only failures.
func (rl *RateLimiter) Blocked(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.pruneLocked(key)) >= rl.limit
}

// Record counts one event for key unconditionally.
func (rl *RateLimiter) Record(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.events[key] = append(rl.pruneLocked(key), rl.now())
}

func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return max(rl.limit-len(rl.pruneLocked(key)), 0)
}

// ResetTime is when the oldest event in the window expires.
func (rl *RateLimiter) ResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.pruneLocked(key)
	if len(valid) == 0 {
		return rl.now()
	}
	return valid[0].Add(rl.window)
}

func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.events, key)
}

// Cleanup removes expired entries.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key := range rl.events {
		rl.pruneLocked(key)
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// pruneLocked drops events older than the window. Events are appended in
// time order so the survivors are a suffix.
func (rl *RateLimiter) pruneLocked(key string) []time.Time {
	events := rl.events[key]
	cutoff := rl.now().Add(-rl.window)

	i := 0
	for i < len(events) && !events[i].After(cutoff) {
		i++
	}
	valid := events[i:]

	if len(valid) == 0 {
		delete(rl.events, key)
		return nil
	}
	rl.events[key] = valid
	return valid
}
