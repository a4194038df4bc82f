package service

import (
	"context"
	"sync"
	"time"
)

// RateLimitService enforces fixed-window request limits per caller
// identity. State is process-local; every instance counts independently.
type RateLimitService struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService() *RateLimitService {
	return &RateLimitService{
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Allow counts a request against the identity's current window. A caller
// at the limit is denied without incrementing further. Unresolvable
// identities share the "unknown" bucket on purpose: all anonymous traffic
// competes for one window.
func (s *RateLimitService) Allow(identity string, limit int, window time.Duration) RateLimitResult {
	if identity == "" {
		identity = "unknown"
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identity]
	if !ok || !entry.resetAt.After(now) {
		// First request, or the previous window has elapsed
		resetAt := now.Add(window)
		s.entries[identity] = &rateLimitEntry{count: 1, resetAt: resetAt}
		return RateLimitResult{Allowed: true, Remaining: limit - 1, ResetAt: resetAt}
	}

	if entry.count >= limit {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}
	}

	entry.count++
	return RateLimitResult{Allowed: true, Remaining: limit - entry.count, ResetAt: entry.resetAt}
}

// StartGC sweeps elapsed windows on a fixed cadence, independent of
// request traffic, so idle identities do not leak memory. Returns when the
// context is cancelled.
func (s *RateLimitService) StartGC(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *RateLimitService) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for identity, entry := range s.entries {
		if !entry.resetAt.After(now) {
			delete(s.entries, identity)
		}
	}
}
