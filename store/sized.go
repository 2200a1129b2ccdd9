package store

import "sync"

// Sized is an LRU store with a fixed capacity. Get refreshes an entry's
// recency; inserting beyond capacity evicts the least recently used entry.
type Sized[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*node[K, V]
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used
}

// node is an intrusive doubly-linked list element.
type node[K comparable, V any] struct {
	key  K
	val  V
	prev *node[K, V]
	next *node[K, V]
}

// NewSized creates an LRU store holding at most capacity entries.
func NewSized[K comparable, V any](capacity int) (*Sized[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Sized[K, V]{
		capacity: capacity,
		items:    make(map[K]*node[K, V], capacity),
	}, nil
}

// Get retrieves a value and marks it most recently used.
func (s *Sized[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.moveToFront(n)
	return n.val, true
}

// Set stores a value under the key, evicting the least recently used entry
// if the store is at capacity.
func (s *Sized[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.items[key]; ok {
		n.val = value
		s.moveToFront(n)
		return
	}

	if len(s.items) >= s.capacity {
		s.evictOldest()
	}

	n := &node[K, V]{key: key, val: value}
	s.items[key] = n
	s.pushFront(n)
}

// Len returns the number of stored entries.
func (s *Sized[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cap returns the configured capacity.
func (s *Sized[K, V]) Cap() int { return s.capacity }

func (s *Sized[K, V]) pushFront(n *node[K, V]) {
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

func (s *Sized[K, V]) unlink(n *node[K, V]) {
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

func (s *Sized[K, V]) moveToFront(n *node[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}

func (s *Sized[K, V]) evictOldest() {
	if s.tail == nil {
		return
	}
	old := s.tail
	s.unlink(old)
	delete(s.items, old.key)
}

var _ Store[string, int] = (*Sized[string, int])(nil)
