package stretcher

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	normFloor = 1e-9

	// mixedResetHz is the lowest frequency whose phase is reset at a
	// transient in mixed mode. Bass partials keep running phase.
	mixedResetHz = 150.0
)

// analyze windows the next frame of c.in, transforms it, and updates the
// magnitude, phase and instantaneous frequency of every bin.
func (s *Stretcher) analyze(c *channel) error {
	c.in.Peek(c.frame, 0)
	if err := window.ApplyCoefficientsInPlace(c.frame, s.win); err != nil {
		return fmt.Errorf("stretcher: window: %w", err)
	}

	for i, v := range c.frame {
		c.spectrum[i] = complex(v, 0)
	}

	if err := s.plan.Forward(c.spectrum, c.spectrum); err != nil {
		return fmt.Errorf("stretcher: forward FFT: %w", err)
	}

	for k := range c.re {
		c.re[k] = real(c.spectrum[k])
		c.im[k] = imag(c.spectrum[k])
	}
	vecmath.Magnitude(c.mag, c.re, c.im)

	hop := float64(s.hop)
	for k := range c.phase {
		phase := math.Atan2(c.im[k], c.re[k])
		delta := core.WrapPhase(phase - c.prevPhase[k] - s.omega[k]*hop)
		c.instFreq[k] = s.omega[k] + delta/hop
		c.phase[k] = phase
		c.prevPhase[k] = phase
	}

	return nil
}

// synthesize advances the synthesis phases by synthHop samples, rebuilds
// the frame and overlap-adds it at the head of the accumulators. Bins at or
// above resetFrom take the analysis phase instead of the accumulated one;
// resetFrom <= 0 resets every bin.
func (s *Stretcher) synthesize(c *channel, synthHop int, resetFrom int, pitch float64) error {
	half := s.size / 2

	if s.flags.Field(FormantMask) == FormantPreserved {
		if err := c.formant.correct(s.plan, c.mag, pitch); err != nil {
			return err
		}
	}

	hs := float64(synthHop)
	if s.flags.Field(PhaseMask) == PhaseIndependent {
		for k := 0; k <= half; k++ {
			c.sumPhase[k] += c.instFreq[k] * hs
		}
	} else {
		s.lockPhases(c, hs)
	}

	if resetFrom <= half {
		copy(c.sumPhase[max(resetFrom, 0):], c.phase[max(resetFrom, 0):])
	}

	for k := 0; k <= half; k++ {
		sin, cos := math.Sincos(c.sumPhase[k])
		c.synth[k] = complex(c.mag[k]*cos, c.mag[k]*sin)
	}

	// Mirror for real-valued IFFT.
	c.synth[0] = complex(real(c.synth[0]), 0)

	c.synth[half] = complex(real(c.synth[half]), 0)
	for k := 1; k < half; k++ {
		v := c.synth[k]
		c.synth[s.size-k] = complex(real(v), -imag(v))
	}

	if err := s.plan.Inverse(c.timeBuf, c.synth); err != nil {
		return fmt.Errorf("stretcher: inverse FFT: %w", err)
	}

	for i, w := range s.win {
		c.accum[i] += real(c.timeBuf[i]) * w
		c.norm[i] += w * w
	}

	return nil
}

// lockPhases advances spectral peaks by their instantaneous frequency and
// carries every other bin along with its nearest peak, keeping the analysis
// phase relationship inside each peak region (identity phase locking).
func (s *Stretcher) lockPhases(c *channel, hs float64) {
	half := s.size / 2

	c.peaks = c.peaks[:0]
	for k := 1; k < half; k++ {
		if c.mag[k] >= c.mag[k-1] && c.mag[k] > c.mag[k+1] {
			c.peaks = append(c.peaks, k)
		}
	}

	if len(c.peaks) == 0 {
		for k := 0; k <= half; k++ {
			c.sumPhase[k] += c.instFreq[k] * hs
		}

		return
	}

	for _, pk := range c.peaks {
		c.sumPhase[pk] += c.instFreq[pk] * hs
	}

	peakIdx := 0
	for k := 0; k <= half; k++ {
		for peakIdx+1 < len(c.peaks) {
			curr := c.peaks[peakIdx]

			next := c.peaks[peakIdx+1]
			if absInt(next-k) < absInt(curr-k) {
				peakIdx++
			} else {
				break
			}
		}

		pk := c.peaks[peakIdx]
		if k != pk {
			c.sumPhase[k] = c.sumPhase[pk] + (c.phase[k] - c.phase[pk])
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
