// Package snapshot provides explicit TTL-bound memoization for the two
// cache tiers the engine reads: the expensive long-TTL raw observation
// snapshot and the cheap short-TTL classification/catalog snapshots.
//
// Each store is an injected dependency, not ambient global state. A tier
// refreshes independently of the others; within one pass each snapshot is
// internally consistent, while cross-tier staleness is an accepted
// trade-off.
package snapshot

import (
	"context"
	"sync"
	"time"
)

// LoadFunc produces a fresh snapshot from the upstream source. Errors
// propagate to the caller unchanged; the store has no retry policy.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Store memoizes one snapshot with a TTL. Refresh is a full replace
// performed under the lock, so a reader never observes a partially-updated
// snapshot. A failed refresh leaves the previous snapshot in place but
// still reports the error.
type Store[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	load     LoadFunc[T]
	now      func() time.Time
	value    T
	loadedAt time.Time
	valid    bool
}

// NewStore creates a store that refreshes via load once the cached
// snapshot is older than ttl.
func NewStore[T any](ttl time.Duration, load LoadFunc[T]) *Store[T] {
	return &Store[T]{
		ttl:  ttl,
		load: load,
		now:  time.Now,
	}
}

// Get returns the cached snapshot, refreshing it first when stale or never
// loaded. Concurrent callers serialize on the refresh; only one load runs.
func (s *Store[T]) Get(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.now().Sub(s.loadedAt) < s.ttl {
		return s.value, nil
	}

	fresh, err := s.load(ctx)
	if err != nil {
		// keep serving the previous snapshot on the next call; the
		// caller owns retry and messaging
		return s.value, err
	}

	s.value = fresh
	s.loadedAt = s.now()
	s.valid = true
	return s.value, nil
}

// Invalidate discards the cached snapshot so the next Get reloads,
// regardless of TTL. Used after catalog writes.
func (s *Store[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
}

// Age returns how old the cached snapshot is, and whether one exists.
func (s *Store[T]) Age() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return 0, false
	}
	return s.now().Sub(s.loadedAt), true
}
