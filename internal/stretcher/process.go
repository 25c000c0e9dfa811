package stretcher

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Process feeds n frames of in, one slice per channel, and runs every
// analysis frame that has become complete. final marks the end of the
// stream; input after it is ignored.
func (s *Stretcher) Process(in [][]float64, n int, final bool) error {
	st := &s.stream
	if st.final {
		s.log.Warn("process after final block ignored", "frames", n)
		return nil
	}

	if !st.started {
		s.startProcessing()
	}

	if len(s.chans) == 0 {
		if final {
			st.final = true
			st.finished = true
		}
		return nil
	}

	if s.stretchDirty {
		s.CalculateStretch()
	}

	s.ingest(in, n)
	st.inputTotal += n
	st.final = final

	for s.frameReady() {
		if err := s.runFrame(); err != nil {
			return err
		}
	}

	if final {
		return s.finish()
	}

	return nil
}

func (s *Stretcher) startProcessing() {
	s.lockHop()

	half := s.size / 2
	for _, c := range s.chans {
		c.in.WriteZeros(half)
	}

	if s.study != nil && s.increments == nil {
		s.stretchDirty = true
	}
	s.stream.started = true

	s.log.Log(2, "process started", "hop", s.hop, "studied", s.study != nil)
}

// ingest writes in to the channel FIFOs, converting stereo to mid/side when
// the channels are processed together.
func (s *Stretcher) ingest(in [][]float64, n int) {
	if n <= 0 {
		return
	}

	if !s.midSide() {
		for i, c := range s.chans {
			c.in.Write(in[i][:n])
		}
		return
	}

	mid := s.pool.Get(n)
	side := s.pool.Get(n)
	defer s.pool.Put(mid)
	defer s.pool.Put(side)

	m, sd := mid.Samples(), side.Samples()
	for i := range n {
		l, r := in[0][i], in[1][i]
		m[i] = (l + r) / 2
		sd[i] = (l - r) / 2
	}

	s.chans[0].in.Write(m)
	s.chans[1].in.Write(sd)
}

func (s *Stretcher) midSide() bool {
	return len(s.chans) == 2 && s.flags.Field(ChannelsMask) == ChannelsTogether
}

// frameReady reports whether the next analysis frame can run. Before the
// final block a full window of input is needed; after it the frames continue
// until the window centre passes the padded end of input or the output has
// reached its end position.
func (s *Stretcher) frameReady() bool {
	st := &s.stream
	if st.finished {
		return false
	}

	if !st.final {
		return s.chans[0].in.Len() >= s.size
	}

	if st.endOut >= 0 && st.emitted >= s.endPadded() {
		return false
	}

	return st.frame*s.hop < st.inputTotal+s.size/2
}

func (s *Stretcher) endPadded() int {
	return int(math.Round(s.stream.endOut)) + s.size/2
}

// increment returns the output advance of frame j before the pitch stage.
func (s *Stretcher) increment(j int) float64 {
	if j < len(s.increments) {
		return s.increments[j]
	}

	c := float64(j * s.hop)
	return (s.curve.Map(c+float64(s.hop)) - s.curve.Map(c)) * s.pitch
}

func (s *Stretcher) runFrame() error {
	st := &s.stream
	half := s.size / 2
	centre := st.frame * s.hop

	for _, c := range s.chans {
		if err := s.analyze(c); err != nil {
			return err
		}
	}

	transient := s.detectTransient(st.frame)

	outPos := int(math.Round(st.outPos))
	resetFrom := half + 1
	switch {
	case st.frame == 0:
		resetFrom = 0
	case transient:
		resetFrom = s.transientResetBin()
	}

	for _, c := range s.chans {
		if err := s.synthesize(c, outPos-st.lastOut, resetFrom, s.pitch); err != nil {
			return err
		}
	}
	st.lastOut = outPos

	inc := s.increment(st.frame)
	next := st.outPos + inc

	if st.final && centre <= st.inputTotal && st.inputTotal < centre+s.hop {
		st.endOut = st.outPos + inc*float64(st.inputTotal-centre)/float64(s.hop)
		st.expected += (st.endOut - st.outPos) / s.pitch
	} else if st.endOut < 0 {
		st.expected += inc / s.pitch
	}

	target := int(math.Round(next))
	if st.endOut >= 0 {
		end := s.endPadded()
		target = min(target, end)
		if st.frame*s.hop+s.hop >= st.inputTotal+half {
			target = end
		}
	}

	if err := s.emit(max(0, target-st.emitted)); err != nil {
		return err
	}

	if s.log.Enabled(3) {
		s.log.Log(3, "frame",
			"index", st.frame, "outPos", outPos, "increment", inc,
			"transient", transient, "emitted", st.emitted)
	}

	st.outPos = next
	st.frame++
	for _, c := range s.chans {
		c.in.Discard(s.hop)
	}

	return nil
}

// detectTransient reports whether frame j starts a transient. Studied frames
// use the onsets picked by CalculateStretch; otherwise the mixed magnitude
// runs through the real-time detector.
func (s *Stretcher) detectTransient(j int) bool {
	if s.flags.Field(TransientsMask) == TransientsSmooth {
		return false
	}

	if s.onsets != nil {
		return j < len(s.onsets) && s.onsets[j]
	}

	copy(s.mixMag, s.chans[0].mag)
	for _, c := range s.chans[1:] {
		floats.Add(s.mixMag, c.mag)
	}
	if len(s.chans) > 1 {
		floats.Scale(1/float64(len(s.chans)), s.mixMag)
	}

	return s.picker.Next(s.detector.Process(s.mixMag))
}

// transientResetBin returns the first bin whose phase is reset at a
// transient.
func (s *Stretcher) transientResetBin() int {
	if s.flags.Field(TransientsMask) == TransientsMixed {
		return int(math.Ceil(mixedResetHz * float64(s.size) / float64(s.sampleRate)))
	}

	return 0
}

// emit moves n finished samples from every channel's accumulators through
// the pitch stage into its output FIFO. The first half window of output is
// lead-in and is dropped.
func (s *Stretcher) emit(n int) error {
	if n == 0 {
		return nil
	}

	st := &s.stream
	skip := max(0, min(n, s.size/2-st.emitted))
	st.emitted += n

	produced := 0
	for i, c := range s.chans {
		out := c.shift(n)[skip:]

		var err error
		c.staged, err = c.stage.process(c.staged[:0], out, s.pitch)
		if err != nil {
			return err
		}

		c.out.Write(c.staged)
		if i == 0 {
			produced = len(c.staged)
		}
	}
	st.produced += produced

	return nil
}

// finish drains the pitch stage and trims or pads the output so that its
// total length matches the stretched input length.
func (s *Stretcher) finish() error {
	st := &s.stream

	produced := 0
	for i, c := range s.chans {
		c.staged = c.stage.flush(c.staged[:0], s.pitch)
		c.out.Write(c.staged)
		if i == 0 {
			produced = len(c.staged)
		}
	}
	st.produced += produced

	st.outLimit = int(math.Round(st.expected))
	want := max(0, st.outLimit-st.retrieved)
	for _, c := range s.chans {
		if have := c.out.Len(); have > want {
			c.out.Truncate(want)
		} else {
			c.out.WriteZeros(want - have)
		}
	}

	st.finished = true
	s.log.Log(1, "stream finished",
		"input", st.inputTotal, "output", st.outLimit, "frames", st.frame)

	return nil
}
