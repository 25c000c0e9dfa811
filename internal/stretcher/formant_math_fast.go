//go:build fastmath

package stretcher

import "github.com/meko-christian/algo-approx"

// logMag and expEnv use polynomial approximations. The envelope is smoothed
// afterwards, which hides their error.
func logMag(x float64) float64 { return approx.FastLog(x) }

func expEnv(x float64) float64 { return approx.FastExp(x) }
