package memo

import "fmt"

// Return carries a computed value together with a flag reporting whether it
// was served from the cache. Use it as the wrapped function's value type
// together with WithCachedFlag: a fresh computation leaves WasCached false,
// a cache hit returns a copy with WasCached set.
type Return[T any] struct {
	Value     T
	WasCached bool
}

// NewReturn wraps a freshly computed value. WasCached starts false.
func NewReturn[T any](value T) Return[T] {
	return Return[T]{Value: value}
}

// cacheFlagger is implemented by Return[T] so the validator can check the
// WithCachedFlag requirement structurally rather than by type name.
type cacheFlagger interface {
	flagCached() any
}

func (r Return[T]) flagCached() any {
	r.WasCached = true
	return r
}

// markCached returns v with its cache-hit flag set, if v carries one.
func markCached[V any](v V) V {
	f, ok := any(v).(cacheFlagger)
	if !ok {
		return v
	}
	return f.flagCached().(V)
}

// flaggable reports whether values of type V carry a cache-hit flag.
func flaggable[V any]() bool {
	var zero V
	_, ok := any(zero).(cacheFlagger)
	return ok
}

// cachedFlagError rejects a flag option applied to a value type that cannot
// carry the flag. knob names the offending option.
func cachedFlagError[V any](knob string) error {
	var zero V
	return fmt.Errorf("%w: %s requires a Return-wrapped value; supported shapes are "+
		"Return[T], (Return[T], error) and (Return[T], bool); got value type %T",
		ErrInvalidConfig, knob, zero)
}
