package store

import "errors"

// Sentinel errors for store construction.
var (
	// ErrInvalidCapacity is returned when a sized store is created with a
	// capacity of zero or less.
	ErrInvalidCapacity = errors.New("store: capacity must be greater than zero")

	// ErrInvalidLifespan is returned when a timed store is created with a
	// lifespan of zero or less.
	ErrInvalidLifespan = errors.New("store: lifespan must be greater than zero")
)

// Store is the backend contract consumed by the memo package.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get never errors; a miss is (zero, false). A time-bounded store reports
//   an expired entry as a miss even if it has not been physically removed yet.
// - Set overwrites any existing entry for the key.
type Store[K comparable, V any] interface {
	// Get retrieves a value. Returns (zero, false) on miss or expiry.
	Get(key K) (V, bool)

	// Set stores a value under the key.
	Set(key K, value V)
}
