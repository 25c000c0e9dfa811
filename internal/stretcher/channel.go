package stretcher

import (
	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

// channel holds the per-channel streaming and vocoder state.
type channel struct {
	in  *buffer.FIFO
	out *buffer.FIFO

	// Overlap-add accumulators. Index 0 is the oldest output position not
	// yet emitted.
	accum []float64
	norm  []float64

	frame    []float64
	spectrum []complex128
	synth    []complex128
	timeBuf  []complex128
	re, im   []float64

	mag       []float64
	phase     []float64
	prevPhase []float64
	instFreq  []float64
	sumPhase  []float64
	peaks     []int

	formant *formantCorrector
	stage   *pitchStage

	// emitted and staged are scratch for audio leaving the accumulators
	// and the pitch stage respectively.
	emitted []float64
	staged  []float64
}

func newChannel(size, sampleRate int, method Flags) *channel {
	bins := size/2 + 1

	return &channel{
		in:        buffer.NewFIFO(2 * size),
		out:       buffer.NewFIFO(2 * size),
		accum:     make([]float64, size),
		norm:      make([]float64, size),
		frame:     make([]float64, size),
		spectrum:  make([]complex128, size),
		synth:     make([]complex128, size),
		timeBuf:   make([]complex128, size),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		mag:       make([]float64, bins),
		phase:     make([]float64, bins),
		prevPhase: make([]float64, bins),
		instFreq:  make([]float64, bins),
		sumPhase:  make([]float64, bins),
		peaks:     make([]int, 0, bins),
		formant:   newFormantCorrector(size, sampleRate),
		stage:     newPitchStage(method),
	}
}

func (c *channel) reset(method Flags) {
	c.in.Reset()
	c.out.Reset()
	clear(c.accum)
	clear(c.norm)
	clear(c.prevPhase)
	clear(c.sumPhase)

	if c.stage.method == method {
		c.stage.reset()
	} else {
		c.stage = newPitchStage(method)
	}
}

// shift moves n finished samples out of the accumulators into c.emitted,
// normalising by the accumulated window power. Positions beyond the
// accumulator length have received no frame and come out as silence.
func (c *channel) shift(n int) []float64 {
	c.emitted = buffer.EnsureLen(c.emitted, n)

	size := len(c.accum)
	for i := range n {
		v := 0.0
		if i < size && c.norm[i] > normFloor {
			v = c.accum[i] / c.norm[i]
		}
		c.emitted[i] = v
	}

	if n >= size {
		clear(c.accum)
		clear(c.norm)
	} else {
		copy(c.accum, c.accum[n:])
		copy(c.norm, c.norm[n:])
		clear(c.accum[size-n:])
		clear(c.norm[size-n:])
	}

	return c.emitted
}
