//go:build !fastmath

package stretcher

import "math"

// logMag and expEnv convert between magnitude and log-magnitude for the
// cepstral envelope.
func logMag(x float64) float64 { return math.Log(x) }

func expEnv(x float64) float64 { return math.Exp(x) }
