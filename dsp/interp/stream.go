package interp

import "math"

// Stream resamples a signal delivered in blocks by stepping a read position
// through it at a caller-chosen rate. A step of 2 halves the sample count, a
// step of 0.5 doubles it. The step may change between calls.
type Stream struct {
	kernel  Kernel
	lead    int
	pending []float64
	pos     float64
}

// NewStream returns a Stream that interpolates with kernel k.
func NewStream(k Kernel) *Stream {
	s := &Stream{kernel: k, lead: k.Lead()}
	s.Reset()
	return s
}

// Reset discards buffered input and rewinds the read position.
func (s *Stream) Reset() {
	s.pending = append(s.pending[:0], make([]float64, s.lead)...)
	s.pos = float64(s.lead)
}

// Pending returns the number of input samples buffered but not yet passed by
// the read position.
func (s *Stream) Pending() int {
	return max(0, len(s.pending)-int(math.Floor(s.pos)))
}

// Process appends in to the stream and appends every output sample that can
// be interpolated from the data seen so far to dst. step must be positive.
func (s *Stream) Process(dst, in []float64, step float64) []float64 {
	s.pending = append(s.pending, in...)
	dst = s.emit(dst, step, len(s.pending))
	s.compact()
	return dst
}

// Flush emits the outputs still pending at end of stream, treating the
// signal as zero past its last sample, then resets the stream.
func (s *Stream) Flush(dst []float64, step float64) []float64 {
	end := len(s.pending)
	s.pending = append(s.pending, 0, 0, 0)
	dst = s.emit(dst, step, end)
	s.Reset()
	return dst
}

// emit interpolates while the read position lies before limit and the
// neighbouring samples the interpolator needs are buffered.
func (s *Stream) emit(dst []float64, step float64, limit int) []float64 {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return dst
	}

	for {
		i := int(math.Floor(s.pos))
		if i >= limit || i-s.lead+s.kernel.Taps() > len(s.pending) {
			return dst
		}

		frac := s.pos - float64(i)
		dst = append(dst, s.kernel.At(s.pending[i-s.lead:], frac))
		s.pos += step
	}
}

func (s *Stream) compact() {
	drop := int(math.Floor(s.pos)) - s.lead
	if drop <= 0 {
		return
	}

	drop = min(drop, len(s.pending))
	n := copy(s.pending, s.pending[drop:])
	s.pending = s.pending[:n]
	s.pos -= float64(drop)
}
