package store

import "testing"

func TestUnbound_GetMiss(t *testing.T) {
	s := NewUnbound[string, int]()

	v, ok := s.Get("missing")
	if ok {
		t.Errorf("Get(missing) = (%d, true), want miss", v)
	}
	if v != 0 {
		t.Errorf("Get(missing) value = %d, want zero", v)
	}
}

func TestUnbound_SetGet(t *testing.T) {
	s := NewUnbound[string, int]()

	s.Set("a", 1)
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
}

func TestUnbound_Overwrite(t *testing.T) {
	s := NewUnbound[string, int]()

	s.Set("a", 1)
	s.Set("a", 2)

	v, ok := s.Get("a")
	if !ok || v != 2 {
		t.Errorf("Get(a) = (%d, %v), want (2, true)", v, ok)
	}
	if got := s.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestUnbound_NoEviction(t *testing.T) {
	s := NewUnbound[int, int]()

	for i := 0; i < 1000; i++ {
		s.Set(i, i)
	}
	if got := s.Len(); got != 1000 {
		t.Errorf("Len() = %d, want 1000", got)
	}
	for i := 0; i < 1000; i++ {
		if v, ok := s.Get(i); !ok || v != i {
			t.Fatalf("Get(%d) = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}
