// Package ratelimit gates per-kit traffic with lazily refilled token
// buckets, protecting storage and the broker from a runaway or
// compromised device.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per kit serial. Buckets are created
// lazily on first contact and can be pruned after long idle periods; a
// fresh bucket simply restarts full, so eviction never affects
// correctness.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New returns a limiter refilling perSecond tokens per second into
// buckets of the given capacity.
func New(perSecond float64, capacity int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   capacity,
	}
}

func (l *Limiter) bucket(kitSerial string, now time.Time) *bucket {
	b, ok := l.buckets[kitSerial]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[kitSerial] = b
	}
	b.lastSeen = now
	return b
}

// Allow consumes cost tokens from the kit's bucket if available. It
// never blocks; a false return means the unit of work should be
// dropped.
func (l *Limiter) Allow(kitSerial string, cost int) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucket(kitSerial, now).lim.AllowN(now, cost)
}

// Check is like Allow but additionally reports, on refusal, how long
// the kit would have to wait before the tokens become available. The
// hint is sent back to kits in rate-limit RPC error responses.
func (l *Limiter) Check(kitSerial string, cost int) (bool, time.Duration) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(kitSerial, now)
	r := b.lim.ReserveN(now, cost)
	if !r.OK() {
		// Cost exceeds capacity; no wait will ever satisfy it.
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Prune evicts buckets idle for longer than the given duration and
// returns how many it removed.
func (l *Limiter) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for kit, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, kit)
			removed++
		}
	}
	return removed
}

// Len reports how many kit buckets are currently held.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
