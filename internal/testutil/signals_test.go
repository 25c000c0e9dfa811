package testutil

import (
	"math"
	"slices"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 0.5, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if s[0] != 0 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	// Quarter period of a 1 kHz tone at 48 kHz.
	if math.Abs(s[12]-0.5) > 1e-12 {
		t.Fatalf("s[12] = %v, want 0.5", s[12])
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 0.25, 256)
	if !slices.Equal(a, DeterministicNoise(42, 0.25, 256)) {
		t.Fatal("same seed gave different noise")
	}
	if slices.Equal(a, DeterministicNoise(43, 0.25, 256)) {
		t.Fatal("different seeds gave identical noise")
	}
	for i, v := range a {
		if math.Abs(v) > 0.25 {
			t.Fatalf("a[%d] = %v exceeds amplitude", i, v)
		}
	}
}

func TestImpulseAndDC(t *testing.T) {
	if got := Impulse(4, 2); !slices.Equal(got, []float64{0, 0, 1, 0}) {
		t.Fatalf("Impulse(4, 2) = %v", got)
	}
	if got := Impulse(4, 9); !slices.Equal(got, make([]float64, 4)) {
		t.Fatalf("Impulse(4, 9) = %v", got)
	}
	if got := DC(0.5, 3); !slices.Equal(got, []float64{0.5, 0.5, 0.5}) {
		t.Fatalf("DC(0.5, 3) = %v", got)
	}
}
