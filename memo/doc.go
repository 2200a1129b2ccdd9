// Package memo turns ordinary functions into cache-backed ones with
// declarative policy: backend selection (unbounded, LRU, TTL, both, or
// custom), key derivation, success-only and presence-only caching, write
// serialization, cache-hit flagging, and a priming entry point that always
// recomputes.
//
// Three constructors cover the supported outcome shapes:
//
//   - [New] wraps func(ctx, A) V — every outcome is cached.
//   - [NewFallible] wraps func(ctx, A) (V, error) — only successes are
//     cached; errors pass through and are recomputed every call.
//   - [NewOptional] wraps func(ctx, A) (V, bool) — only present outcomes
//     are cached.
//
// Each wrapper exposes Call (the memoizing path) and Prime (compute fresh
// and store, without consulting the cache).
//
// Invalid option combinations are rejected at construction with errors
// wrapping [ErrInvalidConfig], before either entry point exists.
//
// The [NewOnce] family provides single-slot variants: one cached value
// regardless of arguments, with an optional lifespan.
package memo
