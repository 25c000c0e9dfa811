package testutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square level of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// ZeroCrossingFrequency estimates the fundamental of a tonal signal from the
// spacing of its rising zero crossings. It returns 0 when fewer than two
// crossings are found.
func ZeroCrossingFrequency(x []float64, sampleRate float64) float64 {
	first, last, count := -1.0, -1.0, 0
	for i := 1; i < len(x); i++ {
		if x[i-1] < 0 && x[i] >= 0 {
			// Linear interpolation of the crossing instant.
			pos := float64(i-1) + x[i-1]/(x[i-1]-x[i])
			if first < 0 {
				first = pos
			}
			last = pos
			count++
		}
	}
	if count < 2 || last <= first {
		return 0
	}
	return float64(count-1) * sampleRate / (last - first)
}
