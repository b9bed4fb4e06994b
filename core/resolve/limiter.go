package resolve

import (
	"context"
	"time"
)

// Limiter enforces a fixed minimum interval between external requests. The
// public query service expects clients to pace themselves; one limiter is
// shared by all lookups of a resolver run.
type Limiter struct {
	interval time.Duration
	last     time.Time
}

// NewLimiter creates a limiter with the given minimum interval between
// calls. Non-positive intervals disable the pacing.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until the interval since the previous call has elapsed, or
// the context is cancelled. The first call never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.interval <= 0 || l.last.IsZero() {
		l.last = time.Now()
		return nil
	}

	remaining := l.interval - time.Since(l.last)
	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.last = time.Now()
	return nil
}
