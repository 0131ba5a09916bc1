// Package ratelimit provides a process-local fixed-window rate limiter.
// This is part of the platform layer and contains no business logic.
//
// State lives in memory only: it is not shared across processes and is lost
// on restart. Distributed limiting is out of scope.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is the remaining window time when the request is rejected.
	RetryAfter time.Duration
}

type window struct {
	count int
	start time.Time
}

// WindowLimiter bounds admissions per key to a fixed count per rolling window.
// Instances are constructed explicitly and injected so tests can run
// independent limiters. Safe for concurrent use.
type WindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	keys   map[string]window
}

// NewWindowLimiter creates a limiter admitting at most limit calls per key
// within each window.
func NewWindowLimiter(limit int, windowSize time.Duration) *WindowLimiter {
	return &WindowLimiter{
		limit:  limit,
		window: windowSize,
		keys:   make(map[string]window),
	}
}

// Admit records an admission attempt for key at the given instant.
// The first attempt for a key, or any attempt after its window has elapsed,
// starts a fresh window with count 1. Once the count reaches the limit,
// further attempts within the window are rejected with the remaining time.
func (l *WindowLimiter) Admit(key string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.keys[key]
	if !ok || now.Sub(current.start) > l.window {
		l.keys[key] = window{count: 1, start: now}
		return Decision{Allowed: true}
	}

	if current.count >= l.limit {
		return Decision{Allowed: false, RetryAfter: current.start.Add(l.window).Sub(now)}
	}

	current.count++
	l.keys[key] = current
	return Decision{Allowed: true}
}
