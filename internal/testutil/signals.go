package testutil

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// DeterministicSine returns length samples of amplitude·sin(2π·freqHz·n/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude]
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, length)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	floats.Scale(amplitude, out)
	return out
}

// Impulse returns a unit impulse at pos, or silence if pos is out of range.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	floats.AddConst(value, out)
	return out
}

// ClickTrain returns unit impulses every period samples from offset on.
func ClickTrain(length, period, offset int) []float64 {
	out := make([]float64, length)
	if period <= 0 {
		return out
	}
	for i := max(offset, 0); i < length; i += period {
		out[i] = 1
	}
	return out
}
