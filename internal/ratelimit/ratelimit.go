// Package ratelimit keeps one token bucket per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitor tracks the limiter and last seen time for a key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed manages per-key rate limiters. A zero or negative rps disables
// limiting.
type Keyed struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// New creates a keyed limiter allowing rps events per second per key with
// the given burst.
func New(rps float64, burst int) *Keyed {
	if burst < 1 {
		burst = 1
	}
	return &Keyed{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether an event for key may happen now.
func (k *Keyed) Allow(key string) bool {
	if k == nil || k.rps <= 0 {
		return true
	}
	return k.get(key).Allow()
}

// get returns the limiter for key, creating it if necessary.
func (k *Keyed) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	v, ok := k.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(k.rps, k.burst)}
		k.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Sweep removes keys not seen for maxIdle.
func (k *Keyed) Sweep(maxIdle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	n := 0
	for key, v := range k.visitors {
		if time.Since(v.lastSeen) > maxIdle {
			delete(k.visitors, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.visitors)
}

// Run sweeps every interval until ctx is done.
func (k *Keyed) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.Sweep(maxIdle)
		}
	}
}
