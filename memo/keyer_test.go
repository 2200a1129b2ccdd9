package memo

import "testing"

type searchArgs struct {
	Query  string
	Limit  int
	Filter map[string]string
}

func TestHashKeyer_Deterministic(t *testing.T) {
	k := hashKeyer[searchArgs, string]{}
	arg := searchArgs{Query: "go", Limit: 10}

	a, err := k.Key(arg)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, err := k.Key(arg)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if a != b {
		t.Errorf("equal arguments produced different keys: %q vs %q", a, b)
	}
	if a == "" {
		t.Error("key is empty")
	}
}

func TestHashKeyer_DistinctInputsDistinctKeys(t *testing.T) {
	k := hashKeyer[searchArgs, string]{}

	a, err := k.Key(searchArgs{Query: "go", Limit: 10})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, err := k.Key(searchArgs{Query: "go", Limit: 20})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if a == b {
		t.Errorf("distinct arguments collided on key %q", a)
	}
}

func TestHashKeyer_MapOrderIndependent(t *testing.T) {
	k := hashKeyer[map[string]int, string]{}

	// Maps with identical contents must key identically regardless of
	// iteration order; the encoder sorts keys to make that hold. Run a few
	// rounds since Go randomizes map iteration.
	m1 := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
	m2 := map[string]int{"d": 4, "c": 3, "b": 2, "a": 1}

	for i := 0; i < 20; i++ {
		a, err := k.Key(m1)
		if err != nil {
			t.Fatalf("Key: %v", err)
		}
		b, err := k.Key(m2)
		if err != nil {
			t.Fatalf("Key: %v", err)
		}
		if a != b {
			t.Fatalf("round %d: equal maps keyed differently: %q vs %q", i, a, b)
		}
	}
}

func TestHashKeyer_UnencodableArgument(t *testing.T) {
	k := hashKeyer[chan int, string]{}
	if _, err := k.Key(make(chan int)); err == nil {
		t.Error("expected an error for an unencodable argument")
	}
}

func TestKeyFunc_Adapter(t *testing.T) {
	var keyer Keyer[string, int] = KeyFunc[string, int](func(s string) int { return len(s) })

	k, err := keyer.Key("hello")
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if k != 5 {
		t.Errorf("Key = %d, want 5", k)
	}
}

func TestStringKeyed(t *testing.T) {
	if !stringKeyed[string]() {
		t.Error("stringKeyed[string]() = false, want true")
	}
	if stringKeyed[int]() {
		t.Error("stringKeyed[int]() = true, want false")
	}
	type alias string
	if stringKeyed[alias]() {
		t.Error("stringKeyed should reject named string types")
	}
}
