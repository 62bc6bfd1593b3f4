package utils

import "testing"

func TestRandSourceDeterministic(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)

	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("expected identical sequences for identical seeds")
		}
	}
}

func TestUniformFloat64Bounds(t *testing.T) {
	r := NewRandSource(7)
	for i := 0; i < 1000; i++ {
		v := r.UniformFloat64(-2.0, 3.0)
		if v < -2.0 || v >= 3.0 {
			t.Fatalf("UniformFloat64 out of bounds: %v", v)
		}
	}
}

func TestIntnRange(t *testing.T) {
	r := NewRandSource(7)
	for i := 0; i < 100; i++ {
		v := r.Intn(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Intn out of range: %d", v)
		}
	}
}
