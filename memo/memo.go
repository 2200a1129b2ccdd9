package memo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/memocache/store"
)

// outcome classifies one call result: value is the storable payload, ok is
// the cache-eligibility verdict (plain: always; fallible: success; optional:
// present).
type outcome[V any] struct {
	value V
	ok    bool
}

// state is the shared cache state for one memoized function. It is created
// on the first Call or Prime, whichever comes first, and lives for the
// process lifetime.
type state[K comparable, V any] struct {
	store store.Store[K, V]
	sem   *semaphore.Weighted
}

// core drives the per-call state machine shared by the three outcome shapes:
// CheckingCache -> Computing -> Storing -> Returning.
type core[A any, K comparable, V any] struct {
	cfg  config[A, K, V]
	init sync.Once
	st   *state[K, V]
	ins  *instruments
}

// newCore validates the assembled options, reserves the cache identity and
// prepares the lazily-initialized state.
func newCore[A any, K comparable, V any](fn any, sh shape, opts []Option[A, K, V]) (*core[A, K, V], error) {
	c := &core[A, K, V]{}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	if c.cfg.name == "" {
		c.cfg.name = functionName(fn)
	}

	if err := c.cfg.validate(sh); err != nil {
		return nil, err
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

// ensure builds the backend on first use. Initialization happens exactly
// once even under concurrent first calls.
func (c *core[A, K, V]) ensure() *state[K, V] {
	c.init.Do(func() {
		c.st = &state[K, V]{
			store: c.cfg.buildStore(),
			sem:   semaphore.NewWeighted(1),
		}
	})
	return c.st
}

// key derives the cache key for an argument. A derivation failure violates
// the wrapped function's precondition and panics.
func (c *core[A, K, V]) key(arg A) K {
	k, err := c.cfg.keyer.Key(arg)
	if err != nil {
		panic(fmt.Sprintf("memo: %s: %v", c.cfg.name, err))
	}
	return k
}

// call runs the memoizing path. A non-nil error means the lock wait was
// cancelled before the lookup; nothing was computed and the cache is
// untouched.
//
// Lock discipline: the lookup happens under a short exclusive acquisition
// (backends may mutate recency or expiry state on read), the computation
// runs unlocked, and the store re-acquires. Under sync writes the
// acquisition is held from before the lookup through the store, so a second
// caller blocks until the first store completes and then observes the hit.
func (c *core[A, K, V]) call(ctx context.Context, arg A, compute func() outcome[V]) (outcome[V], error) {
	st := c.ensure()
	k := c.key(arg)

	if err := st.sem.Acquire(ctx, 1); err != nil {
		return outcome[V]{}, err
	}
	held := true
	// A panic in the lookup, the computation or a custom store must not
	// leave the acquisition held; that would wedge the cache for good.
	defer func() {
		if held {
			st.sem.Release(1)
		}
	}()

	if v, ok := st.store.Get(k); ok {
		held = false
		st.sem.Release(1)
		c.ins.hit(ctx)
		if c.cfg.cachedFlag {
			v = markCached(v)
		}
		return outcome[V]{value: v, ok: true}, nil
	}

	c.ins.miss(ctx)
	if !c.cfg.syncWrites {
		held = false
		st.sem.Release(1)
	}

	start := time.Now()
	out := compute()
	c.ins.computed(ctx, time.Since(start))

	if !out.ok {
		// Failing and absent outcomes are never cached. The deferred
		// release drops the sync-writes acquisition.
		return out, nil
	}

	if !held {
		if err := st.sem.Acquire(ctx, 1); err != nil {
			// Cancelled between compute and store: the caller still gets
			// the computed value, the cache stays as it was.
			return out, nil
		}
		held = true
	}
	st.store.Set(k, out.value)
	c.ins.stored(ctx)

	return out, nil
}

// prime always computes and unconditionally attempts to store the outcome
// under the same eligibility rule, bypassing the read path entirely.
func (c *core[A, K, V]) prime(ctx context.Context, arg A, compute func() outcome[V]) outcome[V] {
	st := c.ensure()
	k := c.key(arg)

	start := time.Now()
	out := compute()
	c.ins.computed(ctx, time.Since(start))

	if !out.ok {
		return out
	}
	if err := st.sem.Acquire(ctx, 1); err != nil {
		return out
	}
	defer st.sem.Release(1)
	st.store.Set(k, out.value)
	c.ins.stored(ctx)

	return out
}

// Func is a memoized plain-valued function. Every outcome is cache-eligible.
type Func[A any, K comparable, V any] struct {
	fn   func(context.Context, A) V
	core *core[A, K, V]
}

// New wraps a plain-valued function. The returned wrapper memoizes Call by
// the derived key; Prime recomputes and overwrites unconditionally.
func New[A any, K comparable, V any](fn func(context.Context, A) V, opts ...Option[A, K, V]) (*Func[A, K, V], error) {
	c, err := newCore[A, K, V](fn, shapePlain, opts)
	if err != nil {
		return nil, err
	}
	return &Func[A, K, V]{fn: fn, core: c}, nil
}

// Call returns the cached value for arg, computing and storing it on a miss.
// If ctx is cancelled while awaiting the cache, the value is computed
// uncached instead.
func (f *Func[A, K, V]) Call(ctx context.Context, arg A) V {
	out, err := f.core.call(ctx, arg, func() outcome[V] {
		return outcome[V]{value: f.fn(ctx, arg), ok: true}
	})
	if err != nil {
		return f.fn(ctx, arg)
	}
	return out.value
}

// Prime computes fresh and stores the result, without consulting the cache.
func (f *Func[A, K, V]) Prime(ctx context.Context, arg A) V {
	out := f.core.prime(ctx, arg, func() outcome[V] {
		return outcome[V]{value: f.fn(ctx, arg), ok: true}
	})
	return out.value
}

// Name returns the cache identity.
func (f *Func[A, K, V]) Name() string { return f.core.cfg.name }

// FallibleFunc is a memoized function returning (V, error). Only successful
// outcomes are cached; errors pass through unchanged and are recomputed on
// every call.
type FallibleFunc[A any, K comparable, V any] struct {
	fn   func(context.Context, A) (V, error)
	core *core[A, K, V]
}

// NewFallible wraps a (V, error) function with success-only caching.
func NewFallible[A any, K comparable, V any](fn func(context.Context, A) (V, error), opts ...Option[A, K, V]) (*FallibleFunc[A, K, V], error) {
	c, err := newCore[A, K, V](fn, shapeResult, opts)
	if err != nil {
		return nil, err
	}
	return &FallibleFunc[A, K, V]{fn: fn, core: c}, nil
}

// Call returns the cached value for arg, computing on a miss. A computation
// error is returned unchanged and nothing is stored. If ctx is cancelled
// while awaiting the cache, the context error is returned.
func (f *FallibleFunc[A, K, V]) Call(ctx context.Context, arg A) (V, error) {
	var callErr error
	out, lockErr := f.core.call(ctx, arg, func() outcome[V] {
		v, err := f.fn(ctx, arg)
		callErr = err
		return outcome[V]{value: v, ok: err == nil}
	})
	if lockErr != nil {
		var zero V
		return zero, lockErr
	}
	return out.value, callErr
}

// Prime computes fresh and stores a successful result, without consulting
// the cache. An error is returned unchanged and nothing is stored.
func (f *FallibleFunc[A, K, V]) Prime(ctx context.Context, arg A) (V, error) {
	var callErr error
	out := f.core.prime(ctx, arg, func() outcome[V] {
		v, err := f.fn(ctx, arg)
		callErr = err
		return outcome[V]{value: v, ok: err == nil}
	})
	return out.value, callErr
}

// Name returns the cache identity.
func (f *FallibleFunc[A, K, V]) Name() string { return f.core.cfg.name }

// OptionalFunc is a memoized function returning (V, bool). Only present
// outcomes are cached; absence passes through and is recomputed every call.
type OptionalFunc[A any, K comparable, V any] struct {
	fn   func(context.Context, A) (V, bool)
	core *core[A, K, V]
}

// NewOptional wraps a (V, bool) function with presence-only caching.
func NewOptional[A any, K comparable, V any](fn func(context.Context, A) (V, bool), opts ...Option[A, K, V]) (*OptionalFunc[A, K, V], error) {
	c, err := newCore[A, K, V](fn, shapeOption, opts)
	if err != nil {
		return nil, err
	}
	return &OptionalFunc[A, K, V]{fn: fn, core: c}, nil
}

// Call returns the cached value for arg, computing on a miss. An absent
// outcome is returned as (zero, false) and nothing is stored. If ctx is
// cancelled while awaiting the cache, the value is computed uncached.
func (f *OptionalFunc[A, K, V]) Call(ctx context.Context, arg A) (V, bool) {
	out, lockErr := f.core.call(ctx, arg, func() outcome[V] {
		v, ok := f.fn(ctx, arg)
		return outcome[V]{value: v, ok: ok}
	})
	if lockErr != nil {
		return f.fn(ctx, arg)
	}
	return out.value, out.ok
}

// Prime computes fresh and stores a present result, without consulting the
// cache.
func (f *OptionalFunc[A, K, V]) Prime(ctx context.Context, arg A) (V, bool) {
	out := f.core.prime(ctx, arg, func() outcome[V] {
		v, ok := f.fn(ctx, arg)
		return outcome[V]{value: v, ok: ok}
	})
	return out.value, out.ok
}

// Name returns the cache identity.
func (f *OptionalFunc[A, K, V]) Name() string { return f.core.cfg.name }
