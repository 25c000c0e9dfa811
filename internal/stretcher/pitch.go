package stretcher

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/interp"
	"github.com/cwbudde/algo-stretch/dsp/resample"
)

const maxResampleDenominator = 512

// pitchStage resamples stretched audio by 1/pitch so that a stretch by
// timeRatio*pitch becomes a stretch by timeRatio at the shifted pitch.
type pitchStage struct {
	method Flags

	stream *interp.Stream

	rs      *resample.Resampler
	rsPitch float64
	skip    int
	delay   int
}

func newPitchStage(method Flags) *pitchStage {
	p := &pitchStage{method: method}
	switch method {
	case PitchHighConsistency:
		p.stream = interp.NewStream(interp.Cubic)
	case PitchHighSpeed:
		p.stream = interp.NewStream(interp.Linear)
	}

	return p
}

// engaged reports whether the stage currently holds state. An idle stage at
// pitch 1 passes audio through untouched.
func (p *pitchStage) engaged() bool {
	return p.rs != nil || (p.stream != nil && p.stream.Pending() > 0)
}

// delaySamples returns the group delay of the polyphase filter, or 0.
func (p *pitchStage) delaySamples() int {
	if p.rs == nil {
		return 0
	}

	return p.delay
}

// process appends the resampled form of in to dst.
func (p *pitchStage) process(dst, in []float64, pitch float64) ([]float64, error) {
	if p.method == PitchHighQuality {
		return p.processPolyphase(dst, in, pitch)
	}

	// Linear interpolation only engages once pitch leaves 1; cubic stays
	// engaged so that pitch changes never switch paths mid-stream.
	if pitch == 1 && p.method == PitchHighSpeed && !p.engaged() {
		return append(dst, in...), nil
	}

	return p.stream.Process(dst, in, pitch), nil
}

func (p *pitchStage) processPolyphase(dst, in []float64, pitch float64) ([]float64, error) {
	if p.rs != nil && p.rsPitch != pitch {
		dst = p.drainPolyphase(dst)
	}

	if pitch == 1 && p.rs == nil {
		return append(dst, in...), nil
	}

	if p.rs == nil {
		rs, err := resample.NewForScale(pitch,
			resample.WithQuality(resample.QualityBest),
			resample.WithMaxDenominator(maxResampleDenominator))
		if err != nil {
			return dst, fmt.Errorf("stretcher: pitch resampler: %w", err)
		}

		p.rs = rs
		p.rsPitch = pitch
		p.delay = rs.Delay()
		p.skip = p.delay
	}

	start := len(dst)
	dst = p.rs.AppendProcess(dst, in)

	if p.skip > 0 {
		n := min(p.skip, len(dst)-start)
		dst = append(dst[:start], dst[start+n:]...)
		p.skip -= n
	}

	return dst, nil
}

// drainPolyphase appends the samples still held by the filter's group delay
// and drops the resampler.
func (p *pitchStage) drainPolyphase(dst []float64) []float64 {
	start := len(dst)
	dst = p.rs.Flush(dst)

	// The flush output starts with whatever ramp-up is still owed to the
	// skip, followed by the delayed signal tail; the rest is filter ringing
	// into the zero padding.
	drop := min(p.skip, len(dst)-start)
	dst = append(dst[:start], dst[start+drop:]...)

	keep := max(0, p.delay-p.skip)
	if start+keep < len(dst) {
		dst = dst[:start+keep]
	}

	p.rs = nil
	p.skip = 0

	return dst
}

// flush appends everything the stage still holds and resets it.
func (p *pitchStage) flush(dst []float64, pitch float64) []float64 {
	if p.rs != nil {
		return p.drainPolyphase(dst)
	}

	if p.stream != nil && p.engaged() {
		return p.stream.Flush(dst, pitch)
	}

	return dst
}

func (p *pitchStage) reset() {
	p.rs = nil
	p.skip = 0
	if p.stream != nil {
		p.stream.Reset()
	}
}
