// Package onset computes per-frame transient detection curves from magnitude
// spectra and picks onsets from them.
package onset

import (
	"github.com/cwbudde/algo-stretch/dsp/core"

	"gonum.org/v1/gonum/floats"
)

// Kind selects the detection function.
type Kind int

const (
	// Compound takes the larger of the percussive and soft curves.
	Compound Kind = iota
	// Percussive measures the fraction of bins that rise sharply.
	Percussive
	// Soft measures normalized positive spectral flux.
	Soft
)

// String returns the lower-case name of the detector kind.
func (k Kind) String() string {
	switch k {
	case Compound:
		return "compound"
	case Percussive:
		return "percussive"
	case Soft:
		return "soft"
	default:
		return "unknown"
	}
}

// risingRatio is the per-bin magnitude growth that counts as a percussive
// rise (3 dB).
var risingRatio = core.DBToLinear(3)

const magnitudeFloor = 1e-8

// Detector turns successive magnitude spectra into a detection curve with
// values in [0, 1].
type Detector struct {
	kind    Kind
	prev    []float64
	primed  bool
	scratch []float64
}

// NewDetector returns a Detector for bins-sized spectra.
func NewDetector(kind Kind, bins int) *Detector {
	return &Detector{
		kind:    kind,
		prev:    make([]float64, bins),
		scratch: make([]float64, bins),
	}
}

// Kind returns the detection function in use.
func (d *Detector) Kind() Kind {
	return d.kind
}

// SetKind switches the detection function. History is kept.
func (d *Detector) SetKind(kind Kind) {
	d.kind = kind
}

// Reset forgets the previous spectrum.
func (d *Detector) Reset() {
	clear(d.prev)
	d.primed = false
}

// Process consumes one magnitude spectrum and returns the detection value
// for it. The first spectrum after construction or Reset yields 0.
func (d *Detector) Process(mag []float64) float64 {
	n := min(len(mag), len(d.prev))
	if n == 0 {
		return 0
	}

	var v float64
	if d.primed {
		switch d.kind {
		case Percussive:
			v = d.percussive(mag[:n])
		case Soft:
			v = d.soft(mag[:n])
		default:
			v = max(d.percussive(mag[:n]), d.soft(mag[:n]))
		}
	}

	copy(d.prev, mag[:n])
	d.primed = true

	return v
}

func (d *Detector) percussive(mag []float64) float64 {
	count := 0
	for k, m := range mag {
		if m > magnitudeFloor && m >= d.prev[k]*risingRatio {
			count++
		}
	}

	return float64(count) / float64(len(mag))
}

func (d *Detector) soft(mag []float64) float64 {
	total := floats.Sum(mag)
	if total <= magnitudeFloor {
		return 0
	}

	rise := d.scratch[:len(mag)]
	floats.SubTo(rise, mag, d.prev[:len(mag)])
	for k, r := range rise {
		rise[k] = max(r, 0)
	}

	return core.Clamp(floats.Sum(rise)/total, 0, 1)
}
