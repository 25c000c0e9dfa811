package interp

import (
	"math"
	"testing"
)

func TestKernelAtReproducesRamp(t *testing.T) {
	ramp := []float64{-1, 0, 1, 2}

	tests := []struct {
		name   string
		kernel Kernel
		x      []float64
	}{
		{name: "linear", kernel: Linear, x: ramp[1:]},
		{name: "cubic", kernel: Cubic, x: ramp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, frac := range []float64{0, 0.25, 0.5, 0.9} {
				if got := tt.kernel.At(tt.x, frac); math.Abs(got-frac) > 1e-12 {
					t.Fatalf("At(%v) = %v, want %v", frac, got, frac)
				}
			}
		})
	}
}

func TestKernelGeometry(t *testing.T) {
	if Linear.Lead() != 0 || Linear.Taps() != 2 {
		t.Fatalf("Linear lead=%d taps=%d", Linear.Lead(), Linear.Taps())
	}
	if Cubic.Lead() != 1 || Cubic.Taps() != 4 {
		t.Fatalf("Cubic lead=%d taps=%d", Cubic.Lead(), Cubic.Taps())
	}
}

func TestHermite4HitsKnots(t *testing.T) {
	if got := Hermite4(0, 3, 5, -2, 8); got != 5 {
		t.Fatalf("t=0: got %v want 5", got)
	}
	if got := Hermite4(1, 3, 5, -2, 8); math.Abs(got+2) > 1e-12 {
		t.Fatalf("t=1: got %v want -2", got)
	}
}
