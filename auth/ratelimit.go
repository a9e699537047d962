package auth

import (
	"sync"
	"time"
)

const (
	// DefaultRateLimit is the maximum failed attempts per window.
	DefaultRateLimit = 5
	// DefaultRateWindow is the window length. The window is anchored at
	// the first failure in a sequence; it does not slide on later failures.
	DefaultRateWindow = time.Minute
)

// RateLimitResult is the outcome of an admission check.
type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds returns the retry delay in whole seconds, rounded
// up and floored at 1 for caller-visible Retry-After headers.
func (r RateLimitResult) RetryAfterSeconds() int {
	secs := int((r.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimiter bounds failed attempts per key within a fixed time window.
// It is a best-effort, single-process in-memory structure: no durability,
// no cross-instance coordination. Acceptable because the system runs as
// a single logical authentication gate; a scaling limitation, not a bug.
//
// Create one at process start and inject it; per-key updates are
// serialized by the internal mutex.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

// RateOption configures the RateLimiter.
type RateOption func(*RateLimiter)

// WithRateLimit overrides the per-window attempt limit.
func WithRateLimit(limit int) RateOption {
	return func(rl *RateLimiter) {
		rl.limit = limit
	}
}

// WithRateWindow overrides the window length.
func WithRateWindow(window time.Duration) RateOption {
	return func(rl *RateLimiter) {
		rl.window = window
	}
}

// WithRateClock overrides the time source for tests.
func WithRateClock(now func() time.Time) RateOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates an empty limiter with the default policy.
func NewRateLimiter(opts ...RateOption) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		limit:   DefaultRateLimit,
		window:  DefaultRateWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// liveEntry returns the entry for key if one exists within its window.
// Expired entries are deleted and reported absent. Callers hold rl.mu.
func (rl *RateLimiter) liveEntry(key string, now time.Time) *rateLimitEntry {
	entry, ok := rl.entries[key]
	if !ok {
		return nil
	}
	if now.Sub(entry.windowStart) >= rl.window {
		delete(rl.entries, key)
		return nil
	}
	return entry
}

// Check reports whether an attempt for key may proceed. It never creates
// an entry — only failures do — so a key with no recorded failures is
// always allowed.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry := rl.liveEntry(key, now)
	if entry == nil {
		return RateLimitResult{Allowed: true}
	}
	if entry.count >= rl.limit {
		return RateLimitResult{
			Allowed:    false,
			RetryAfter: rl.window - now.Sub(entry.windowStart),
		}
	}
	return RateLimitResult{Allowed: true}
}

// RecordFailure counts a failed attempt for key. The first failure in a
// sequence anchors the window; later failures increment in place.
func (rl *RateLimiter) RecordFailure(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if entry := rl.liveEntry(key, now); entry != nil {
		entry.count++
		return
	}
	rl.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
}

// Reset unconditionally clears the entry for key. Called on successful
// login so the penalty does not outlive the failure streak.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, key)
}

// Sweep removes expired entries. Call periodically from a background
// goroutine to bound memory under many distinct keys.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, entry := range rl.entries {
		if now.Sub(entry.windowStart) >= rl.window {
			delete(rl.entries, key)
		}
	}
}
