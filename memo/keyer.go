package memo

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Keyer derives a cache key from a call argument.
//
// Contract:
// - Determinism: equal arguments must produce equal keys. Distinct logical
//   inputs must not collide; with a custom Keyer, collisions are the
//   caller's responsibility.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a Keyer error means the argument cannot be keyed at all, which
//   is a violation of the wrapped function's precondition; Call and Prime
//   panic on it rather than silently bypassing the cache.
type Keyer[A any, K comparable] interface {
	Key(arg A) (K, error)
}

// KeyFunc adapts a plain derivation function into a Keyer. The function must
// be deterministic; it has no error channel.
type KeyFunc[A any, K comparable] func(A) K

func (f KeyFunc[A, K]) Key(arg A) (K, error) {
	return f(arg), nil
}

// hashKeyer is the default key derivation: a canonical msgpack encoding of
// the argument (map keys sorted) hashed with xxhash64 and rendered as hex.
// It is only installed when K is string; the validator enforces that.
type hashKeyer[A any, K comparable] struct{}

func (hashKeyer[A, K]) Key(arg A) (K, error) {
	var zero K

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(arg); err != nil {
		return zero, fmt.Errorf("memo: cannot encode argument of type %T for key derivation: %w", arg, err)
	}

	sum := xxhash.Sum64(buf.Bytes())
	return any(strconv.FormatUint(sum, 16)).(K), nil
}

// stringKeyed reports whether K is exactly string, the key type the default
// keyer produces.
func stringKeyed[K comparable]() bool {
	var zero K
	_, ok := any(zero).(string)
	return ok
}

var _ Keyer[int, string] = hashKeyer[int, string]{}
var _ Keyer[int, int] = KeyFunc[int, int](nil)
