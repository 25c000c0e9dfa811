package stretcher

import (
	"github.com/cwbudde/algo-stretch/internal/onset"
	"github.com/cwbudde/algo-stretch/internal/stretchcalc"
)

// minIncrementShare is the smallest advance, relative to an unstretched
// frame, left to the frames between locked transients.
const minIncrementShare = 0.25

// study holds the detector curve of the mono mix gathered before
// processing.
type study struct {
	ch       *channel
	detector *onset.Detector
	curve    []float64
	total    int
	final    bool
	frame    int
}

// Study feeds n frames of in to the offline analysis pass. It must precede
// the first Process call and is not available in real-time mode.
func (s *Stretcher) Study(in [][]float64, n int, final bool) error {
	if s.flags.Field(ProcessMask) == ProcessRealTime {
		return ErrRealTimeStudy
	}
	if s.stream.started {
		return ErrStudyAfterProcess
	}

	s.lockHop()

	st := s.study
	if st == nil {
		st = &study{
			ch:       newChannel(s.size, s.sampleRate, PitchHighSpeed),
			detector: onset.NewDetector(s.flags.detectorKind(), s.size/2+1),
		}
		st.ch.in.WriteZeros(s.size / 2)
		s.study = st
		s.log.Log(2, "study started", "hop", s.hop)
	}

	if st.final {
		s.log.Warn("study after final study block; continuing", "frames", n)
		st.final = false
	}

	s.writeMix(st, in, n)
	st.total += n
	st.final = final
	s.stretchDirty = true

	for {
		centre := st.frame * s.hop
		ready := st.ch.in.Len() >= s.size
		if final {
			ready = centre < st.total+s.size/2
		}
		if !ready {
			break
		}

		if err := s.analyze(st.ch); err != nil {
			return err
		}
		st.curve = append(st.curve, st.detector.Process(st.ch.mag))
		st.ch.in.Discard(s.hop)
		st.frame++
	}

	if final {
		s.rebuildCurve()
		s.log.Log(1, "study finished", "input", st.total, "frames", len(st.curve))
	}

	return nil
}

func (s *Stretcher) writeMix(st *study, in [][]float64, n int) {
	if n <= 0 || len(s.chans) == 0 {
		return
	}

	mix := s.pool.Get(n)
	defer s.pool.Put(mix)

	m := mix.Samples()
	for _, ch := range in[:len(s.chans)] {
		for i, v := range ch[:n] {
			m[i] += v
		}
	}

	scale := 1 / float64(len(s.chans))
	for i := range m {
		m[i] *= scale
	}

	st.ch.in.Write(m)
}

// CalculateStretch derives the per-frame output increments from the study
// data, the key-frame map and the current ratios. Without study data it only
// refreshes the key-frame curve. It is called implicitly by the first
// Process after a study pass.
func (s *Stretcher) CalculateStretch() {
	s.stretchDirty = false
	s.rebuildCurve()

	st := s.study
	if st == nil {
		return
	}

	frames := len(st.curve)
	inc := stretchcalc.Increments(s.curve, frames, s.hop, s.pitch)

	var onsets []bool
	locked := 0
	if s.flags.Field(TransientsMask) != TransientsSmooth {
		kind := s.flags.detectorKind()
		onsets = onset.PeakPick(st.curve, onset.Threshold(kind), s.onsetGap())

		unstretched := float64(s.hop) * s.pitch
		locked = stretchcalc.Distribute(inc, onsets, s.curve, s.hop, st.total/s.hop,
			unstretched, minIncrementShare*unstretched)
	}

	s.increments = inc
	s.onsets = onsets
	if s.onsets == nil {
		s.onsets = make([]bool, frames)
	}

	s.log.Log(1, "stretch calculated",
		"frames", frames, "keyFrames", len(s.curve.Keys), "lockedOnsets", locked)
}
