package resample

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-stretch/dsp/window"
)

// designPolyphaseFIR designs a Kaiser-windowed sinc low-pass for the ratio
// up/down and splits it into up branches. It returns the branches and the
// length of the longest one.
func designPolyphaseFIR(up, down int, p profile) ([][]float64, int, error) {
	if up <= 0 || down <= 0 {
		return nil, 0, ErrInvalidRatio
	}

	nTaps := p.tapsPerPhase * up

	// Cutoff in cycles per sample of the upsampled stream.
	fc := 0.5 / float64(max(up, down)) * p.cutoffScale

	taps, err := window.Kaiser(nTaps, p.kaiserBeta)
	if err != nil {
		return nil, 0, fmt.Errorf("resample: %w", err)
	}

	center := 0.5 * float64(nTaps-1)
	for n := range taps {
		taps[n] *= 2 * fc * sinc(2*fc*(float64(n)-center))
	}

	sum := floats.Sum(taps)
	if sum == 0 {
		return nil, 0, errors.New("resample: designed zero-sum filter")
	}
	// Unity DC gain per output phase.
	floats.Scale(float64(up)/sum, taps)

	phases := make([][]float64, up)
	span := 0
	for ph := range phases {
		branch := make([]float64, 0, (nTaps-ph+up-1)/up)
		for i := ph; i < nTaps; i += up {
			branch = append(branch, taps[i])
		}
		span = max(span, len(branch))
		phases[ph] = branch
	}

	return phases, span, nil
}

// approximateRatio returns the best fraction num/den for v with den <= maxDen,
// found by continued-fraction expansion.
func approximateRatio(v float64, maxDen int) (num, den int) {
	if !(v > 0) || math.IsInf(v, 0) {
		return 1, 1
	}

	p0, q0 := 1.0, 0.0
	p1, q1 := math.Floor(v), 1.0

	for x := v; ; {
		frac := x - math.Floor(x)
		if frac == 0 {
			break
		}

		x = 1 / frac
		a := math.Floor(x)

		q2 := a*q1 + q0
		if q2 > float64(maxDen) {
			break
		}

		p0, p1 = p1, a*p1+p0
		q0, q1 = q1, q2
	}

	num, den = int(math.Round(p1)), int(math.Round(q1))
	if num <= 0 || den <= 0 {
		return 1, 1
	}

	g := gcd(num, den)
	return num / g, den / g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	if a < 0 {
		a = -a
	}
	if a == 0 {
		return 1
	}

	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	return math.Sin(math.Pi*x) / (math.Pi * x)
}
