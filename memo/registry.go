package memo

import (
	"fmt"
	"sort"
	"sync"
)

// caches maps cache identity to its wrapper. One slot per memoized function,
// for the life of the process.
var caches sync.Map

// register reserves a cache identity. Duplicate identities are a
// configuration error, the runtime analog of two generated caches sharing a
// name.
func register(name string, handle any) error {
	if _, loaded := caches.LoadOrStore(name, handle); loaded {
		return fmt.Errorf("%w: cache identity %q is already registered", ErrInvalidConfig, name)
	}
	return nil
}

// unregister frees an identity. Only tests use this; caches normally live
// for the process lifetime.
func unregister(name string) {
	caches.Delete(name)
}

// Names returns the registered cache identities, sorted.
func Names() []string {
	var names []string
	caches.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
