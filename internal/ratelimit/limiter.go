// Package ratelimit provides keyed fixed-window counters for request
// throttling. State is process-scoped and injected by the caller, never held
// as package globals.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter allows up to limit events per key within each window.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*window
}

func New(limit int, windowSize time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  windowSize,
		entries: make(map[string]*window),
	}
}

// Allow reports whether another event is permitted for the key, counting it
// if so. Expired windows are reset in place and swept lazily.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		l.entries[key] = &window{count: 1, resetAt: now.Add(l.window)}
		l.sweepLocked(now)
		return true
	}

	if entry.count >= l.limit {
		return false
	}
	entry.count++
	return true
}

// sweepLocked drops expired windows so the map does not grow without bound.
// Called with the lock held.
func (l *Limiter) sweepLocked(now time.Time) {
	if len(l.entries) < 1024 {
		return
	}
	for key, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, key)
		}
	}
}
