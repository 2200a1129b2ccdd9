package store

import "sync"

// Unbound is a map-backed store with no eviction. Entries live until the
// process exits or they are overwritten.
type Unbound[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
}

// NewUnbound creates an empty unbounded store.
func NewUnbound[K comparable, V any]() *Unbound[K, V] {
	return &Unbound[K, V]{entries: make(map[K]V)}
}

// Get retrieves a value. Returns (zero, false) on miss.
func (s *Unbound[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	v, ok := s.entries[key]
	s.mu.Unlock()
	return v, ok
}

// Set stores a value under the key.
func (s *Unbound[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
}

// Len returns the number of stored entries.
func (s *Unbound[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store[string, int] = (*Unbound[string, int])(nil)
