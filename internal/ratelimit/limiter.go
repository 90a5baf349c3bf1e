// Package ratelimit implements the in-process fixed-window request counter
// guarding the auth flows. Windows are keyed by (source identity, endpoint);
// state lives in process memory only and is lost on restart. Rate limiting
// here is best effort, not a security boundary.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// staleAfter is the age past which an idle window is dropped to bound memory.
const staleAfter = 5 * time.Minute

// LimitError reports a rejected request together with the seconds remaining
// in the current window.
type LimitError struct {
	// RetryAfter is the suggested wait in seconds, at least 1.
	RetryAfter int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("ratelimit: exceeded, retry after %ds", e.RetryAfter)
}

type window struct {
	count int
	start time.Time
}

// Limiter counts requests per (identity, endpoint) key in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

// NewLimiter creates an empty limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string]window),
		now:     time.Now,
	}
}

// Check admits or rejects one request for the key. A fresh or elapsed window
// resets to count 1; a full window rejects with a *LimitError carrying the
// remaining window seconds (minimum 1).
func (l *Limiter) Check(identity, endpoint string, limit int, windowSize time.Duration) error {
	key := identity + ":" + endpoint
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > windowSize {
		l.windows[key] = window{count: 1, start: now}
		return nil
	}

	if w.count >= limit {
		remaining := windowSize - now.Sub(w.start)
		retryAfter := int(remaining.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return &LimitError{RetryAfter: retryAfter}
	}

	w.count++
	l.windows[key] = w
	return nil
}

// StartSweeper periodically drops stale windows until the context ends. The
// on-access sweep already bounds memory; this keeps an idle process tidy.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.mu.Lock()
				l.sweepLocked(l.now())
				l.mu.Unlock()
			}
		}
	}()
}

// sweepLocked removes windows whose start is older than the staleness bound.
// Caller holds the mutex.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) > staleAfter {
			delete(l.windows, key)
		}
	}
}
