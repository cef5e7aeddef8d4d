package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces calls at least minInterval apart. Callers that learn
// about upstream throttling (a 429 with Retry-After) push the next slot out
// with Defer, so every waiting caller backs off together.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	if minInterval < 0 {
		minInterval = 0
	}
	return &RateLimiter{
		interval: minInterval,
		now:      time.Now,
		after:    time.After,
	}
}

// Wait blocks until the caller's reserved slot or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	now := l.now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.after(delay):
		return nil
	}
}

// Defer moves the next free slot to at least now+d.
func (l *RateLimiter) Defer(d time.Duration) {
	if l == nil || d <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	until := l.now().Add(d)
	if until.After(l.next) {
		l.next = until
	}
}
