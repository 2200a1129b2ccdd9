package memo_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/memocache/memo"
)

func ExampleNew() {
	calls := 0
	square, _ := memo.New(
		func(_ context.Context, a int) int {
			calls++
			return a * a
		},
		memo.WithName[int, string, int]("SQUARE"),
	)

	ctx := context.Background()
	fmt.Println(square.Call(ctx, 6))
	fmt.Println(square.Call(ctx, 6))
	fmt.Println("computations:", calls)
	// Output:
	// 36
	// 36
	// computations: 1
}

func ExampleNewFallible() {
	lookup, _ := memo.NewFallible(
		func(_ context.Context, id int) (string, error) {
			if id < 0 {
				return "", errors.New("no such user")
			}
			return fmt.Sprintf("user-%d", id), nil
		},
		memo.WithName[int, string, string]("USER_LOOKUP"),
		memo.WithTTL[int, string, string](5*time.Minute),
	)

	ctx := context.Background()
	name, err := lookup.Call(ctx, 42)
	fmt.Println(name, err)

	// Errors pass through and are never cached.
	_, err = lookup.Call(ctx, -1)
	fmt.Println(err)
	// Output:
	// user-42 <nil>
	// no such user
}

func ExampleNewOptional() {
	find, _ := memo.NewOptional(
		func(_ context.Context, key string) (int, bool) {
			known := map[string]int{"a": 1}
			v, ok := known[key]
			return v, ok
		},
		memo.WithName[string, string, int]("FIND"),
		memo.WithSize[string, string, int](100),
	)

	ctx := context.Background()
	v, ok := find.Call(ctx, "a")
	fmt.Println(v, ok)
	_, ok = find.Call(ctx, "b")
	fmt.Println(ok)
	// Output:
	// 1 true
	// false
}

func ExampleFunc_Prime() {
	calls := 0
	f, _ := memo.New(
		func(_ context.Context, a int) int {
			calls++
			return a + calls
		},
		memo.WithName[int, string, int]("PRIMED"),
	)

	ctx := context.Background()
	// Prime computes and stores without reading the cache; the following
	// Call is a hit.
	f.Prime(ctx, 10)
	f.Call(ctx, 10)
	fmt.Println("computations:", calls)
	// Output:
	// computations: 1
}

func ExampleWithCachedFlag() {
	f, _ := memo.New(
		func(_ context.Context, a int) memo.Return[int] {
			return memo.NewReturn(a * 2)
		},
		memo.WithName[int, string, memo.Return[int]]("FLAGGED"),
		memo.WithCachedFlag[int, string, memo.Return[int]](),
	)

	ctx := context.Background()
	first := f.Call(ctx, 3)
	second := f.Call(ctx, 3)
	fmt.Println(first.Value, first.WasCached)
	fmt.Println(second.Value, second.WasCached)
	// Output:
	// 6 false
	// 6 true
}

func ExampleNewOnce() {
	loads := 0
	config, _ := memo.NewOnce(
		func(_ context.Context) string {
			loads++
			return "loaded settings"
		},
		memo.WithOnceName("SETTINGS"),
	)

	ctx := context.Background()
	fmt.Println(config.Call(ctx))
	fmt.Println(config.Call(ctx))
	fmt.Println("loads:", loads)
	// Output:
	// loaded settings
	// loaded settings
	// loads: 1
}
