package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct seeds, got %d twice", a)
	}
}

func TestNewRandProducesValues(t *testing.T) {
	r, err := NewRand()
	if err != nil {
		t.Fatalf("new rand: %v", err)
	}
	for i := 0; i < 100; i++ {
		if v := r.IntN(2); v != 0 && v != 1 {
			t.Fatalf("IntN(2) = %d", v)
		}
	}
}

func TestNewSeededIsDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 20; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
