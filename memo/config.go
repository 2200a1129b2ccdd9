package memo

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/memocache/store"
)

// shape identifies the outcome shape of a wrapped function. Result and
// option are flags so the validator can reject a combination even though the
// public constructors cannot produce one.
type shape int

const (
	shapePlain  shape = 0
	shapeResult shape = 1 << 0
	shapeOption shape = 1 << 1
)

// config is the assembled policy for one memoized function. It is fixed at
// construction time.
type config[A any, K comparable, V any] struct {
	name       string
	unbound    bool
	size       int
	sizeSet    bool
	ttl        time.Duration
	ttlSet     bool
	refresh    bool
	newStore   func() store.Store[K, V]
	storeSet   bool
	keyer      Keyer[A, K]
	syncWrites bool
	cachedFlag bool
	meter      metric.Meter
	clock      store.Clock
}

// Option configures a memoized function.
type Option[A any, K comparable, V any] func(*config[A, K, V])

// WithName sets the cache identity. Identities are process-wide unique; the
// default is derived from the wrapped function's symbol name.
func WithName[A any, K comparable, V any](name string) Option[A, K, V] {
	return func(c *config[A, K, V]) { c.name = name }
}

// WithUnbounded selects the unbounded backend explicitly. This is also the
// default when no backend knob is set.
func WithUnbounded[A any, K comparable, V any]() Option[A, K, V] {
	return func(c *config[A, K, V]) { c.unbound = true }
}

// WithSize selects a size-bounded LRU backend holding at most n entries.
// Combined with WithTTL it selects the size-and-time-bounded backend.
func WithSize[A any, K comparable, V any](n int) Option[A, K, V] {
	return func(c *config[A, K, V]) {
		c.size = n
		c.sizeSet = true
	}
}

// WithTTL selects a time-bounded backend whose entries expire d after
// creation. Combined with WithSize it selects the size-and-time-bounded
// backend.
func WithTTL[A any, K comparable, V any](d time.Duration) Option[A, K, V] {
	return func(c *config[A, K, V]) {
		c.ttl = d
		c.ttlSet = true
	}
}

// WithTTLRefresh makes a hit reset the entry's creation instant. Requires
// WithTTL.
func WithTTLRefresh[A any, K comparable, V any]() Option[A, K, V] {
	return func(c *config[A, K, V]) { c.refresh = true }
}

// WithKeyFunc sets a custom key derivation. Without it keys are derived
// structurally from the argument, which requires K to be string.
func WithKeyFunc[A any, K comparable, V any](fn func(A) K) Option[A, K, V] {
	return func(c *config[A, K, V]) {
		if fn != nil {
			c.keyer = KeyFunc[A, K](fn)
		}
	}
}

// WithKeyer sets a custom Keyer implementation. See WithKeyFunc for the
// common case.
func WithKeyer[A any, K comparable, V any](k Keyer[A, K]) Option[A, K, V] {
	return func(c *config[A, K, V]) { c.keyer = k }
}

// WithStore selects a custom backend. The constructor is invoked once, when
// the cache state is first needed.
func WithStore[A any, K comparable, V any](create func() store.Store[K, V]) Option[A, K, V] {
	return func(c *config[A, K, V]) {
		c.newStore = create
		c.storeSet = true
	}
}

// WithSyncWrites holds the cache's exclusive acquisition from before the
// lookup through the store, so concurrent misses on a key compute once.
func WithSyncWrites[A any, K comparable, V any]() Option[A, K, V] {
	return func(c *config[A, K, V]) { c.syncWrites = true }
}

// WithCachedFlag marks values served from the cache by setting the
// WasCached flag on the returned copy. Requires a Return-wrapped value type.
func WithCachedFlag[A any, K comparable, V any]() Option[A, K, V] {
	return func(c *config[A, K, V]) { c.cachedFlag = true }
}

// WithMeter enables hit/miss/store counters and a compute-duration histogram
// on the given meter. Without it no metrics are recorded.
func WithMeter[A any, K comparable, V any](m metric.Meter) Option[A, K, V] {
	return func(c *config[A, K, V]) { c.meter = m }
}

// WithClock replaces the time source of the built-in time-bounded backends.
// Requires WithTTL. Intended for tests.
func WithClock[A any, K comparable, V any](clk store.Clock) Option[A, K, V] {
	return func(c *config[A, K, V]) { c.clock = clk }
}

// validate is the policy validator: it checks every cross-option constraint
// and reports the first violation with the knob and the requirement.
func (c *config[A, K, V]) validate(sh shape) error {
	if sh&shapeResult != 0 && sh&shapeOption != 0 {
		return fmt.Errorf("%w: the result and option outcome shapes are mutually exclusive", ErrInvalidConfig)
	}

	if c.name == "" {
		return fmt.Errorf("%w: cache name must not be empty", ErrInvalidConfig)
	}

	var families []string
	if c.unbound {
		families = append(families, "unbounded (WithUnbounded)")
	}
	if c.sizeSet || c.ttlSet {
		var knobs []string
		if c.sizeSet {
			knobs = append(knobs, "WithSize")
		}
		if c.ttlSet {
			knobs = append(knobs, "WithTTL")
		}
		families = append(families, "bounded ("+strings.Join(knobs, "+")+")")
	}
	if c.storeSet {
		families = append(families, "custom (WithStore)")
	}
	if len(families) > 1 {
		return fmt.Errorf("%w: backend families %s are mutually exclusive; pick exactly one",
			ErrInvalidConfig, strings.Join(families, " and "))
	}

	if c.sizeSet && c.size <= 0 {
		return fmt.Errorf("%w: WithSize requires a capacity greater than zero, got %d", ErrInvalidConfig, c.size)
	}
	if c.ttlSet && c.ttl <= 0 {
		return fmt.Errorf("%w: WithTTL requires a lifespan greater than zero, got %v", ErrInvalidConfig, c.ttl)
	}
	if c.refresh && !c.ttlSet {
		return fmt.Errorf("%w: WithTTLRefresh requires WithTTL", ErrInvalidConfig)
	}
	if c.clock != nil && !c.ttlSet {
		return fmt.Errorf("%w: WithClock requires a time-bounded backend (WithTTL)", ErrInvalidConfig)
	}
	if c.storeSet && c.newStore == nil {
		return fmt.Errorf("%w: WithStore requires a non-nil constructor", ErrInvalidConfig)
	}

	if c.keyer == nil {
		if !stringKeyed[K]() {
			var zero K
			return fmt.Errorf("%w: default key derivation produces string keys; key type %T requires WithKeyFunc",
				ErrInvalidConfig, zero)
		}
		c.keyer = hashKeyer[A, K]{}
	}

	if c.cachedFlag && !flaggable[V]() {
		return cachedFlagError[V]("WithCachedFlag")
	}

	return nil
}

// buildStore constructs the configured backend. Knob values were already
// validated, so the built-in constructors cannot fail here.
func (c *config[A, K, V]) buildStore() store.Store[K, V] {
	switch {
	case c.storeSet:
		return c.newStore()
	case c.sizeSet && c.ttlSet:
		s, _ := store.NewTimedSized[K, V](c.size, c.ttl, c.refresh)
		if c.clock != nil {
			s.SetClock(c.clock)
		}
		return s
	case c.sizeSet:
		s, _ := store.NewSized[K, V](c.size)
		return s
	case c.ttlSet:
		s, _ := store.NewTimed[K, V](c.ttl, c.refresh)
		if c.clock != nil {
			s.SetClock(c.clock)
		}
		return s
	default:
		return store.NewUnbound[K, V]()
	}
}

// functionName derives the default cache identity from a function's symbol
// name: the qualified name minus its package path, uppercased.
func functionName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "MEMO"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToUpper(name)
}
