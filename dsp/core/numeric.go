package core

import "math"

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// WrapPhase maps an angle in radians to the principal range [-pi, pi].
func WrapPhase(phase float64) float64 {
	if phase >= -math.Pi && phase <= math.Pi {
		return phase
	}

	return phase - 2*math.Pi*math.Round(phase/(2*math.Pi))
}

// NearestPowerOfTwo returns 2^k for the integer k closest to log2(x).
// Non-positive and non-finite inputs return 1.
func NearestPowerOfTwo(x float64) float64 {
	if !(x > 0) || math.IsInf(x, 0) {
		return 1
	}

	return math.Exp2(math.Round(math.Log2(x)))
}
