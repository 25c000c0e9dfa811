package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "empty"},
		{name: "identical", a: []float64{1, -2, 3}, b: []float64{1, -2, 3}},
		{name: "one sample off", a: []float64{0, 0.5, 0}, b: []float64{0, 0.25, 0}, want: 0.25},
		{name: "sign ignored", a: []float64{-1, 1}, b: []float64{1, 1}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxAbsDiff(tt.a, tt.b)
			if err != nil {
				t.Fatalf("MaxAbsDiff() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-15 {
				t.Fatalf("MaxAbsDiff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	if _, err := MaxAbsDiff(make([]float64, 3), make([]float64, 4)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestRequireHelpersAcceptGoodData(t *testing.T) {
	x := DeterministicSine(100, 8000, 1, 64)
	RequireFinite(t, x)
	RequireSliceNearlyEqual(t, x, x, 0)
}
