package onset

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Threshold returns the fixed detection floor used for kind.
func Threshold(kind Kind) float64 {
	switch kind {
	case Percussive:
		return 0.35
	case Soft:
		return 0.25
	default:
		return 0.3
	}
}

const (
	historyLen = 16
	// delta lifts the adaptive threshold above the running median.
	delta = 0.1
)

// Picker decides in real time whether the newest detection value marks an
// onset. The threshold is the larger of a fixed floor and the running median
// of recent values plus a margin, and onsets closer than minGap frames to the
// previous one are suppressed.
type Picker struct {
	floor   float64
	minGap  int
	history []float64
	sorted  []float64
	prev    float64
	since   int
}

// NewPicker returns a Picker with the given fixed floor and minimum gap.
func NewPicker(floor float64, minGap int) *Picker {
	p := &Picker{
		floor:   floor,
		minGap:  max(minGap, 1),
		history: make([]float64, 0, historyLen),
		sorted:  make([]float64, 0, historyLen),
	}
	p.Reset()

	return p
}

// SetFloor replaces the fixed detection floor.
func (p *Picker) SetFloor(floor float64) {
	p.floor = floor
}

// Reset clears the running history.
func (p *Picker) Reset() {
	p.history = p.history[:0]
	p.prev = 0
	p.since = p.minGap
}

// Next records value and reports whether it is an onset.
func (p *Picker) Next(value float64) bool {
	threshold := p.floor
	if len(p.history) > 0 {
		threshold = max(threshold, median(p.sorted[:0], p.history)+delta)
	}

	onset := value > threshold && value > p.prev && p.since >= p.minGap

	if len(p.history) == historyLen {
		copy(p.history, p.history[1:])
		p.history = p.history[:historyLen-1]
	}
	p.history = append(p.history, value)
	p.prev = value

	if onset {
		p.since = 0
	}
	p.since++

	return onset
}

// PeakPick marks onsets in a complete detection curve. A frame is an onset
// when it is a local maximum, exceeds both floor and the median of its
// neighbourhood plus a margin, and lies at least minGap frames after the
// previous onset.
func PeakPick(curve []float64, floor float64, minGap int) []bool {
	out := make([]bool, len(curve))
	minGap = max(minGap, 1)
	half := historyLen / 2
	last := -minGap
	scratch := make([]float64, 0, historyLen+1)

	for i, v := range curve {
		if v <= floor {
			continue
		}
		if i > 0 && curve[i-1] > v {
			continue
		}
		if i+1 < len(curve) && curve[i+1] > v {
			continue
		}

		lo, hi := max(0, i-half), min(len(curve), i+half+1)
		if v <= median(scratch, curve[lo:hi])+delta {
			continue
		}
		if i-last < minGap {
			continue
		}

		out[i] = true
		last = i
	}

	return out
}

func median(scratch, values []float64) float64 {
	scratch = append(scratch[:0], values...)
	slices.Sort(scratch)

	return stat.Quantile(0.5, stat.Empirical, scratch, nil)
}
