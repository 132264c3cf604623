// Package ratelimit throttles clients by key with one token bucket each.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	clients map[string]*clientLimiter
	mu      sync.Mutex
	now     func() time.Time
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// PerHour builds a limiter allowing n requests per hour per key. n <= 0
// disables limiting.
func PerHour(n, burst int) *Limiter {
	if n <= 0 {
		return New(rate.Inf, burst, time.Hour)
	}
	return New(rate.Every(time.Hour/time.Duration(n)), burst, time.Hour)
}

func New(limit rate.Limit, burst int, expiry time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   limit,
		burst:   burst,
		expiry:  expiry,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow spends one token for id.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[id] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

// Sweep forgets clients idle for longer than the expiry.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for id, cl := range l.clients {
		if now.Sub(cl.lastAccess) > l.expiry {
			delete(l.clients, id)
		}
	}
}

// Run sweeps every interval until stop is closed.
func (l *Limiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-stop:
			return
		}
	}
}
