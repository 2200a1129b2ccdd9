package store

import (
	"sync"
	"time"
)

// stamped pairs a value with its creation instant.
type stamped[V any] struct {
	val V
	at  time.Time
}

// fresh reports whether the entry is still within its lifespan at now.
// Freshness is a strict comparison: elapsed == lifespan counts as expired.
func (e stamped[V]) fresh(now time.Time, lifespan time.Duration) bool {
	return now.Sub(e.at) < lifespan
}

// Timed is a map-backed store whose entries expire after a fixed lifespan.
// Expired entries are removed lazily on read.
type Timed[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]stamped[V]
	lifespan time.Duration
	refresh  bool
	clock    Clock
}

// NewTimed creates a store whose entries expire lifespan after creation.
// If refresh is true, a hit resets the entry's creation instant.
func NewTimed[K comparable, V any](lifespan time.Duration, refresh bool) (*Timed[K, V], error) {
	if lifespan <= 0 {
		return nil, ErrInvalidLifespan
	}
	return &Timed[K, V]{
		entries:  make(map[K]stamped[V]),
		lifespan: lifespan,
		refresh:  refresh,
		clock:    realClock{},
	}, nil
}

// SetClock replaces the store's time source. Intended for tests; not safe
// to call concurrently with Get or Set.
func (s *Timed[K, V]) SetClock(c Clock) { s.clock = c }

// Get retrieves a value. An entry past its lifespan is a miss.
func (s *Timed[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	now := s.clock.Now()
	if !e.fresh(now, s.lifespan) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}

	if s.refresh {
		e.at = now
		s.entries[key] = e
	}
	return e.val, true
}

// Set stores a value stamped with the current instant.
func (s *Timed[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.entries[key] = stamped[V]{val: value, at: s.clock.Now()}
	s.mu.Unlock()
}

// Len returns the number of stored entries, including entries that have
// expired but not yet been cleaned up.
func (s *Timed[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store[string, int] = (*Timed[string, int])(nil)
