// Package ratelimit keeps one token bucket per key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed hands out an independent limiter per key and forgets keys idle
// for longer than the sweep interval.
type Keyed struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*entry

	done     chan struct{}
	stopOnce sync.Once
}

// PerMinute builds a limiter refilling perMin tokens a minute.
func PerMinute(perMin float64, burst int) *Keyed {
	return New(rate.Limit(perMin/60), burst, 10*time.Minute)
}

func New(limit rate.Limit, burst int, idle time.Duration) *Keyed {
	k := &Keyed{
		limit:    limit,
		burst:    burst,
		idle:     idle,
		now:      time.Now,
		limiters: make(map[string]*entry),
		done:     make(chan struct{}),
	}
	go k.sweepLoop()
	return k
}

func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	e, ok := k.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.limiters[key] = e
	}
	now := k.now()
	e.lastSeen = now
	k.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *Keyed) sweep() {
	cutoff := k.now().Add(-k.idle)
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, e := range k.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(k.limiters, key)
		}
	}
}

func (k *Keyed) sweepLoop() {
	t := time.NewTicker(k.idle)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			k.sweep()
		case <-k.done:
			return
		}
	}
}

func (k *Keyed) Stop() {
	k.stopOnce.Do(func() { close(k.done) })
}
