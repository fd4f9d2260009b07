// Package ratelimiter throttles requests per client key with token buckets.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an untouched bucket is kept before it is evicted.
const idleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed holds one token bucket per key (a client IP). A zero rate disables
// limiting entirely. All methods are safe for concurrent use.
type Keyed struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

// New returns a limiter allowing requestsPerSecond sustained with bursts of
// up to burst requests per key.
func New(requestsPerSecond float64, burst int) *Keyed {
	if burst < 1 {
		burst = 1
	}
	return &Keyed{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Enabled reports whether Allow can ever return false.
func (k *Keyed) Enabled() bool {
	return k.limit > 0
}

// Allow consumes one token from key's bucket and reports whether the
// request may proceed.
func (k *Keyed) Allow(key string) bool {
	if !k.Enabled() {
		return true
	}

	now := k.now()

	k.mu.Lock()
	defer k.mu.Unlock()

	k.sweep(now)

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// sweep drops idle buckets at most once per idleTTL. Callers hold k.mu.
func (k *Keyed) sweep(now time.Time) {
	if now.Sub(k.lastSweep) < idleTTL {
		return
	}
	k.lastSweep = now
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) >= idleTTL {
			delete(k.buckets, key)
		}
	}
}
