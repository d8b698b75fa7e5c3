package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// client is one caller's bucket and when it was last used
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limits for multiple clients. Buckets idle long enough
// to have refilled completely are dropped, since a fresh bucket is identical.
type Limiter struct {
	clients   map[string]*client
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	perHour   int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter creates a new rate limiter
// requestsPerHour: total requests allowed per hour per client (e.g., 20)
// burst: max requests in a burst (e.g., 5)
func NewLimiter(requestsPerHour int, burst int) *Limiter {
	// Convert requests per hour to requests per second
	r := rate.Limit(float64(requestsPerHour) / 3600.0)

	l := &Limiter{
		clients: make(map[string]*client),
		rate:    r,
		burst:   burst,
		perHour: requestsPerHour,
		now:     time.Now,
	}
	if requestsPerHour > 0 {
		// time for an empty bucket to refill
		l.idle = time.Duration(burst) * time.Hour / time.Duration(requestsPerHour)
	}
	l.lastSweep = l.now()
	return l
}

// GetLimiter returns the rate limiter for a specific client
func (l *Limiter) GetLimiter(clientID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, exists := l.clients[clientID]
	if !exists {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[clientID] = c
	}
	c.lastSeen = now

	return c.limiter
}

// sweep runs at most once per idle period. Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if l.idle == 0 || now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now

	for id, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idle {
			delete(l.clients, id)
		}
	}
}

// Allow checks if a request is allowed for the given client
func (l *Limiter) Allow(clientID string) bool {
	return l.GetLimiter(clientID).Allow()
}

// Tokens returns the current number of available tokens for a client
func (l *Limiter) Tokens(clientID string) float64 {
	return l.GetLimiter(clientID).Tokens()
}

// PerHour returns the configured hourly allowance
func (l *Limiter) PerHour() int {
	return l.perHour
}

// Clients reports how many buckets are held
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
