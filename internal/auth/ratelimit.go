package auth

import (
	"sync"
	"time"
)

// rateWindow is a fixed counting window for one client key.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a fixed-window request throttle keyed by client address.
// Bursts straddling a window boundary may exceed the nominal rate; the
// limiter deters abuse, it does not enforce a precise quota.
type RateLimiter struct {
	mu       sync.Mutex
	windows  map[string]*rateWindow
	window   time.Duration
	capacity int
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter allowing capacity requests per key
// within each fixed window.
func NewRateLimiter(window time.Duration, capacity int) *RateLimiter {
	if window <= 0 {
		window = 10 * time.Second
	}
	if capacity <= 0 {
		capacity = 20
	}
	return &RateLimiter{
		windows:  make(map[string]*rateWindow),
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// window capacity. Check and increment happen under one lock so concurrent
// requests cannot slip past the ceiling.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.windowStart) > rl.window {
		rl.windows[key] = &rateWindow{count: 1, windowStart: now}
		return true
	}

	w.count++
	return w.count <= rl.capacity
}
