package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter checks whether a request should be allowed based on
// the identity's service tier.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// InProcessLimiter is a fixed-window rate limiter that tracks request
// counts per subject and tier in memory.
type InProcessLimiter struct {
	tiers      map[string]int // tier -> requests per minute
	defaultRPM int
	mu         sync.Mutex
	counters   map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a rate limiter. tiers maps tier names to
// their requests-per-minute limit; defaultRPM applies to unlisted
// tiers. A limit of 0 or less disables limiting for that tier.
func NewInProcessLimiter(tiers map[string]int, defaultRPM int) *InProcessLimiter {
	return &InProcessLimiter{
		tiers:      tiers,
		defaultRPM: defaultRPM,
		counters:   make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := identity.ServiceTier
	if tier == "" {
		tier = "default"
	}

	rpm := l.defaultRPM
	if limit, ok := l.tiers[tier]; ok {
		rpm = limit
	}
	if rpm <= 0 {
		return nil
	}

	key := identity.Subject + ":" + tier

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		l.counters[key] = &counter{count: 1, windowAt: now}
		l.pruneLocked(now)
		return nil
	}

	c.count++
	if c.count > rpm {
		return ErrTooManyRequests
	}

	return nil
}

// pruneLocked drops counters whose window has long expired so the map
// does not grow with churning subjects. Caller holds the lock.
func (l *InProcessLimiter) pruneLocked(now time.Time) {
	if len(l.counters) < 1024 {
		return
	}
	for key, c := range l.counters {
		if now.Sub(c.windowAt) >= 2*time.Minute {
			delete(l.counters, key)
		}
	}
}
