package store

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many recorded requests pass between sweeps of idle keys.
const sweepEvery = 1024

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Counters are per process, so limits are not shared between replicas.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	now       func() time.Time
	maxWindow time.Duration
	recorded  int
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *RateLimitMemoryStore) WithClock(now func() time.Time) *RateLimitMemoryStore {
	s.now = now

	return s
}

// Record appends a request under key and returns the number of requests
// inside the trailing window.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maxWindow = max(s.maxWindow, window)

	kept := prune(s.requests[key], now.Add(-window))
	kept = append(kept, now)
	s.requests[key] = kept

	s.recorded++
	if s.recorded%sweepEvery == 0 {
		s.sweep(now)
	}

	return int64(len(kept)), nil
}

// Keys returns how many clients are currently tracked.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// sweep drops clients with no request inside the widest window seen.
func (s *RateLimitMemoryStore) sweep(now time.Time) {
	cutoff := now.Add(-s.maxWindow)

	for key, timestamps := range s.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(s.requests, key)
		}
	}
}

// prune drops timestamps at or before cutoff, reusing the backing array.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	kept := timestamps[:0]

	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	return kept
}
