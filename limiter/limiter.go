// Package limiter provides a fixed-delay throttle for paced upstream calls.
package limiter

import (
	"context"
	"sync"
	"time"
)

func New(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

type Limiter struct {
	mu     sync.Mutex
	delay  time.Duration
	nextAt time.Time
}

// Wait blocks until the throttle window has passed, or until ctx is
// canceled.
func (lim *Limiter) Wait(ctx context.Context) error {
	lim.mu.Lock()
	nextAt := lim.nextAt
	lim.mu.Unlock()

	if nextAt.IsZero() || !nextAt.After(time.Now()) {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(nextAt)):
		return nil
	}
}

// Delay pushes the next permitted call out by the configured delay.
func (lim *Limiter) Delay() {
	lim.DelayBy(lim.delay)
}

// DelayBy pushes the next permitted call out by the given duration.
func (lim *Limiter) DelayBy(d time.Duration) {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	lim.nextAt = time.Now().Add(d)
}
