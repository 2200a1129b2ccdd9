package store

import (
	"sync"
	"time"
)

// TimedSized combines LRU capacity eviction with lifespan expiry. Eviction
// order follows recency of use; freshness follows creation time.
type TimedSized[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	lifespan time.Duration
	refresh  bool
	clock    Clock
	items    map[K]*timedNode[K, V]
	head     *timedNode[K, V]
	tail     *timedNode[K, V]
}

type timedNode[K comparable, V any] struct {
	key  K
	ent  stamped[V]
	prev *timedNode[K, V]
	next *timedNode[K, V]
}

// NewTimedSized creates a store holding at most capacity entries, each
// expiring lifespan after creation. If refresh is true, a hit resets the
// entry's creation instant.
func NewTimedSized[K comparable, V any](capacity int, lifespan time.Duration, refresh bool) (*TimedSized[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if lifespan <= 0 {
		return nil, ErrInvalidLifespan
	}
	return &TimedSized[K, V]{
		capacity: capacity,
		lifespan: lifespan,
		refresh:  refresh,
		clock:    realClock{},
		items:    make(map[K]*timedNode[K, V], capacity),
	}, nil
}

// SetClock replaces the store's time source. Intended for tests; not safe
// to call concurrently with Get or Set.
func (s *TimedSized[K, V]) SetClock(c Clock) { s.clock = c }

// Get retrieves a value and marks it most recently used. An entry past its
// lifespan is a miss and is removed.
func (s *TimedSized[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	now := s.clock.Now()
	if !n.ent.fresh(now, s.lifespan) {
		s.unlink(n)
		delete(s.items, key)
		var zero V
		return zero, false
	}

	if s.refresh {
		n.ent.at = now
	}
	s.moveToFront(n)
	return n.ent.val, true
}

// Set stores a value stamped with the current instant, evicting the least
// recently used entry if the store is at capacity.
func (s *TimedSized[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := stamped[V]{val: value, at: s.clock.Now()}

	if n, ok := s.items[key]; ok {
		n.ent = ent
		s.moveToFront(n)
		return
	}

	if len(s.items) >= s.capacity {
		s.evictOldest()
	}

	n := &timedNode[K, V]{key: key, ent: ent}
	s.items[key] = n
	s.pushFront(n)
}

// Len returns the number of stored entries, including entries that have
// expired but not yet been cleaned up.
func (s *TimedSized[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cap returns the configured capacity.
func (s *TimedSized[K, V]) Cap() int { return s.capacity }

func (s *TimedSized[K, V]) pushFront(n *timedNode[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *TimedSized[K, V]) unlink(n *timedNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

func (s *TimedSized[K, V]) moveToFront(n *timedNode[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}

func (s *TimedSized[K, V]) evictOldest() {
	if s.tail == nil {
		return
	}
	old := s.tail
	s.unlink(old)
	delete(s.items, old.key)
}

var _ Store[string, int] = (*TimedSized[string, int])(nil)
