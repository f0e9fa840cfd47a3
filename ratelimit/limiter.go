package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces requests for a single source: a rolling per-minute
// quota, a minimum delay between consecutive grants, and a cap on
// outstanding acquisitions. Sources never share a limiter, so there is
// no cross-source contention.
type Limiter struct {
	sem      chan struct{}
	perMin   int
	minDelay time.Duration

	mu        sync.Mutex
	grants    []time.Time
	lastGrant time.Time
}

func New(requestsPerMinute int, minDelay time.Duration, maxConcurrent int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Limiter{
		sem:      make(chan struct{}, maxConcurrent),
		perMin:   requestsPerMinute,
		minDelay: minDelay,
	}
}

// Acquire blocks until a request slot is granted. It cannot fail, only
// delay; the sole error path is the caller's context expiring.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		wait := l.tryGrant()
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			<-l.sem
			return ctx.Err()
		}
	}
}

// Release returns the concurrency slot taken by Acquire.
func (l *Limiter) Release() {
	<-l.sem
}

// tryGrant records a grant and returns 0, or returns how long the
// caller must wait before trying again.
func (l *Limiter) tryGrant() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	cutoff := now.Add(-time.Minute)
	kept := l.grants[:0]
	for _, g := range l.grants {
		if g.After(cutoff) {
			kept = append(kept, g)
		}
	}
	l.grants = kept

	var wait time.Duration
	if len(l.grants) >= l.perMin {
		wait = l.grants[0].Add(time.Minute).Sub(now)
	}
	if !l.lastGrant.IsZero() {
		if d := l.minDelay - now.Sub(l.lastGrant); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return wait
	}

	l.grants = append(l.grants, now)
	l.lastGrant = now
	return 0
}
