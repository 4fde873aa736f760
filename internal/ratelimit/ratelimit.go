// Package ratelimit throttles inbound requests per client with a fixed
// window counter.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Defaults applied when a Limiter is built with non-positive values.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

type clientWindow struct {
	count   int
	resetAt time.Time
}

// Limiter allows at most limit requests per client in each window.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

// New creates a Limiter.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientWindow),
	}
}

// Allow records a request from client and reports whether it is within the
// limit. The first request, or the first after the window expired, starts a
// new window with a count of one.
func (l *Limiter) Allow(client string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.clients[client]
	if !ok || !now.Before(w.resetAt) {
		l.clients[client] = &clientWindow{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Sweep drops every window that expired before now and returns how many
// were removed.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for client, w := range l.clients {
		if !now.Before(w.resetAt) {
			delete(l.clients, client)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Run sweeps expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * l.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(l.now()); n > 0 {
				log.Printf("ratelimit: evicted %d expired client window(s)", n)
			}
		}
	}
}
