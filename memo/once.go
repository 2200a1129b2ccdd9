package memo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/memocache/store"
)

// onceConfig is the policy for a single-slot cache.
type onceConfig struct {
	name       string
	ttl        time.Duration
	ttlSet     bool
	syncWrites bool
	cachedFlag bool
	meter      metric.Meter
	clock      store.Clock
}

// OnceOption configures a single-slot cache.
type OnceOption func(*onceConfig)

// WithOnceName sets the cache identity. The default is derived from the
// wrapped function's symbol name.
func WithOnceName(name string) OnceOption {
	return func(c *onceConfig) { c.name = name }
}

// WithOnceTTL bounds the slot's lifetime: a value older than d is treated
// as a miss and recomputed.
func WithOnceTTL(d time.Duration) OnceOption {
	return func(c *onceConfig) {
		c.ttl = d
		c.ttlSet = true
	}
}

// WithOnceSyncWrites holds the write lock across the computation, so
// concurrent misses compute once.
func WithOnceSyncWrites() OnceOption {
	return func(c *onceConfig) { c.syncWrites = true }
}

// WithOnceCachedFlag marks values served from the slot by setting the
// WasCached flag on the returned copy. Requires a Return-wrapped value type.
func WithOnceCachedFlag() OnceOption {
	return func(c *onceConfig) { c.cachedFlag = true }
}

// WithOnceMeter enables metrics on the given meter.
func WithOnceMeter(m metric.Meter) OnceOption {
	return func(c *onceConfig) { c.meter = m }
}

// WithOnceClock replaces the slot's time source. Requires WithOnceTTL.
// Intended for tests.
func WithOnceClock(clk store.Clock) OnceOption {
	return func(c *onceConfig) { c.clock = clk }
}

// validate is the single constraint check for the single-slot policy,
// including the value-shape rule the flag option imposes.
func (c *onceCore[V]) validate() error {
	if c.cfg.name == "" {
		return fmt.Errorf("%w: cache name must not be empty", ErrInvalidConfig)
	}
	if c.cfg.ttlSet && c.cfg.ttl <= 0 {
		return fmt.Errorf("%w: WithOnceTTL requires a lifespan greater than zero, got %v", ErrInvalidConfig, c.cfg.ttl)
	}
	if c.cfg.clock != nil && !c.cfg.ttlSet {
		return fmt.Errorf("%w: WithOnceClock requires WithOnceTTL", ErrInvalidConfig)
	}
	if c.cfg.cachedFlag && !flaggable[V]() {
		return cachedFlagError[V]("WithOnceCachedFlag")
	}
	return nil
}

// onceCore is the single-slot cache state: one value regardless of
// arguments, guarded by a read/write lock so concurrent readers share the
// fast path.
type onceCore[V any] struct {
	cfg onceConfig
	ins *instruments

	mu  sync.RWMutex
	val V
	at  time.Time
	has bool
}

func newOnceCore[V any](fn any, opts []OnceOption) (*onceCore[V], error) {
	c := &onceCore[V]{}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	if c.cfg.name == "" {
		c.cfg.name = functionName(fn)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.cfg.clock == nil {
		c.cfg.clock = store.SystemClock()
	}

	ins, err := newInstruments(c.cfg.meter, c.cfg.name)
	if err != nil {
		return nil, err
	}
	c.ins = ins

	if err := register(c.cfg.name, c); err != nil {
		return nil, err
	}
	return c, nil
}

// lookup reads the slot without mutating it. Freshness is a strict
// comparison: elapsed == ttl counts as expired.
func (c *onceCore[V]) lookup() (V, bool) {
	if !c.has {
		var zero V
		return zero, false
	}
	if c.cfg.ttlSet && c.cfg.clock.Now().Sub(c.at) >= c.cfg.ttl {
		var zero V
		return zero, false
	}
	return c.val, true
}

func (c *onceCore[V]) storeLocked(v V) {
	c.val = v
	c.at = c.cfg.clock.Now()
	c.has = true
}

func (c *onceCore[V]) serveHit(ctx context.Context, v V) V {
	c.ins.hit(ctx)
	if c.cfg.cachedFlag {
		v = markCached(v)
	}
	return v
}

// call checks the slot under a read lock, then computes. Under sync writes
// the write lock is taken first and held through the store, with a re-check
// after acquisition.
func (c *onceCore[V]) call(ctx context.Context, compute func() outcome[V]) outcome[V] {
	c.mu.RLock()
	v, ok := c.lookup()
	c.mu.RUnlock()
	if ok {
		return outcome[V]{value: c.serveHit(ctx, v), ok: true}
	}

	if c.cfg.syncWrites {
		c.mu.Lock()
		defer c.mu.Unlock()
		if v, ok := c.lookup(); ok {
			return outcome[V]{value: c.serveHit(ctx, v), ok: true}
		}
		out := c.compute(ctx, compute)
		if out.ok {
			c.storeLocked(out.value)
			c.ins.stored(ctx)
		}
		return out
	}

	out := c.compute(ctx, compute)
	if out.ok {
		c.mu.Lock()
		c.storeLocked(out.value)
		c.mu.Unlock()
		c.ins.stored(ctx)
	}
	return out
}

// prime always computes and stores an eligible outcome, skipping the read
// path.
func (c *onceCore[V]) prime(ctx context.Context, compute func() outcome[V]) outcome[V] {
	out := c.compute(ctx, compute)
	if out.ok {
		c.mu.Lock()
		c.storeLocked(out.value)
		c.mu.Unlock()
		c.ins.stored(ctx)
	}
	return out
}

func (c *onceCore[V]) compute(ctx context.Context, compute func() outcome[V]) outcome[V] {
	c.ins.miss(ctx)
	start := time.Now()
	out := compute()
	c.ins.computed(ctx, time.Since(start))
	return out
}

// Once is a memoized zero-argument function holding a single cached value.
type Once[V any] struct {
	fn   func(context.Context) V
	core *onceCore[V]
}

// NewOnce wraps a plain-valued zero-argument function with a single-slot
// cache.
func NewOnce[V any](fn func(context.Context) V, opts ...OnceOption) (*Once[V], error) {
	c, err := newOnceCore[V](fn, opts)
	if err != nil {
		return nil, err
	}
	return &Once[V]{fn: fn, core: c}, nil
}

// Call returns the cached value, computing and storing it when the slot is
// empty or expired.
func (o *Once[V]) Call(ctx context.Context) V {
	out := o.core.call(ctx, func() outcome[V] {
		return outcome[V]{value: o.fn(ctx), ok: true}
	})
	return out.value
}

// Prime computes fresh and overwrites the slot, without consulting it.
func (o *Once[V]) Prime(ctx context.Context) V {
	out := o.core.prime(ctx, func() outcome[V] {
		return outcome[V]{value: o.fn(ctx), ok: true}
	})
	return out.value
}

// Name returns the cache identity.
func (o *Once[V]) Name() string { return o.core.cfg.name }

// FallibleOnce is a single-slot cache over a (V, error) function. Only
// successes are stored.
type FallibleOnce[V any] struct {
	fn   func(context.Context) (V, error)
	core *onceCore[V]
}

// NewFallibleOnce wraps a (V, error) zero-argument function with a
// success-only single-slot cache.
func NewFallibleOnce[V any](fn func(context.Context) (V, error), opts ...OnceOption) (*FallibleOnce[V], error) {
	c, err := newOnceCore[V](fn, opts)
	if err != nil {
		return nil, err
	}
	return &FallibleOnce[V]{fn: fn, core: c}, nil
}

// Call returns the cached value, computing on an empty or expired slot.
// Errors pass through unchanged and are never stored.
func (o *FallibleOnce[V]) Call(ctx context.Context) (V, error) {
	var callErr error
	out := o.core.call(ctx, func() outcome[V] {
		v, err := o.fn(ctx)
		callErr = err
		return outcome[V]{value: v, ok: err == nil}
	})
	return out.value, callErr
}

// Prime computes fresh and stores a successful result.
func (o *FallibleOnce[V]) Prime(ctx context.Context) (V, error) {
	var callErr error
	out := o.core.prime(ctx, func() outcome[V] {
		v, err := o.fn(ctx)
		callErr = err
		return outcome[V]{value: v, ok: err == nil}
	})
	return out.value, callErr
}

// Name returns the cache identity.
func (o *FallibleOnce[V]) Name() string { return o.core.cfg.name }

// OptionalOnce is a single-slot cache over a (V, bool) function. Only
// present outcomes are stored.
type OptionalOnce[V any] struct {
	fn   func(context.Context) (V, bool)
	core *onceCore[V]
}

// NewOptionalOnce wraps a (V, bool) zero-argument function with a
// presence-only single-slot cache.
func NewOptionalOnce[V any](fn func(context.Context) (V, bool), opts ...OnceOption) (*OptionalOnce[V], error) {
	c, err := newOnceCore[V](fn, opts)
	if err != nil {
		return nil, err
	}
	return &OptionalOnce[V]{fn: fn, core: c}, nil
}

// Call returns the cached value, computing on an empty or expired slot.
// Absence passes through and is never stored.
func (o *OptionalOnce[V]) Call(ctx context.Context) (V, bool) {
	out := o.core.call(ctx, func() outcome[V] {
		v, ok := o.fn(ctx)
		return outcome[V]{value: v, ok: ok}
	})
	return out.value, out.ok
}

// Prime computes fresh and stores a present result.
func (o *OptionalOnce[V]) Prime(ctx context.Context) (V, bool) {
	out := o.core.prime(ctx, func() outcome[V] {
		v, ok := o.fn(ctx)
		return outcome[V]{value: v, ok: ok}
	})
	return out.value, out.ok
}

// Name returns the cache identity.
func (o *OptionalOnce[V]) Name() string { return o.core.cfg.name }
