package stretcher

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-stretch/dsp/core"
)

const (
	// formantQuefrency is the lifter cutoff in seconds. Cepstral components
	// below it describe the spectral envelope, those above it the harmonics.
	formantQuefrency = 0.001
	formantLogFloor  = 1e-10
	maxFormantGain   = 10.0
)

// formantCorrector estimates a cepstral spectral envelope and rescales
// magnitudes so that the envelope survives the pitch stage unchanged.
type formantCorrector struct {
	size   int
	cutoff int

	logSpec  []complex128
	cepstrum []complex128
	env      []float64
}

func newFormantCorrector(size, sampleRate int) *formantCorrector {
	cutoff := max(1, int(math.Round(formantQuefrency*float64(sampleRate))))

	return &formantCorrector{
		size:     size,
		cutoff:   min(cutoff, size/2-1),
		logSpec:  make([]complex128, size),
		cepstrum: make([]complex128, size),
		env:      make([]float64, size/2+1),
	}
}

// envelope fills f.env with the smoothed magnitude envelope of mag.
func (f *formantCorrector) envelope(plan *algofft.Plan[complex128], mag []float64) error {
	half := f.size / 2
	for k := 0; k <= half; k++ {
		v := complex(logMag(max(mag[k], formantLogFloor)), 0)
		f.logSpec[k] = v
		if k > 0 && k < half {
			f.logSpec[f.size-k] = v
		}
	}

	if err := plan.Inverse(f.cepstrum, f.logSpec); err != nil {
		return fmt.Errorf("stretcher: cepstrum: %w", err)
	}

	for n := f.cutoff; n <= f.size-f.cutoff; n++ {
		f.cepstrum[n] = 0
	}

	if err := plan.Forward(f.logSpec, f.cepstrum); err != nil {
		return fmt.Errorf("stretcher: envelope: %w", err)
	}

	for k := 0; k <= half; k++ {
		f.env[k] = expEnv(real(f.logSpec[k]))
	}

	return nil
}

// correct multiplies mag by env(k*pitch)/env(k). A component at bin k lands
// on bin k*pitch after resampling, where it should carry that bin's
// original envelope.
func (f *formantCorrector) correct(plan *algofft.Plan[complex128], mag []float64, pitch float64) error {
	if pitch == 1 {
		return nil
	}

	if err := f.envelope(plan, mag); err != nil {
		return err
	}

	half := f.size / 2
	for k := 0; k <= half; k++ {
		src := float64(k) * pitch
		target := 0.0
		if src < float64(half) {
			lo := int(src)
			frac := src - float64(lo)
			target = f.env[lo]*(1-frac) + f.env[lo+1]*frac
		}

		gain := 0.0
		if f.env[k] > 0 {
			gain = core.Clamp(target/f.env[k], 0, maxFormantGain)
		}
		mag[k] *= gain
	}

	return nil
}
