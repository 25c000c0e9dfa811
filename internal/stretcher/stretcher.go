// Package stretcher implements a streaming phase-vocoder time stretcher and
// pitch shifter for any number of channels.
//
// Audio is fed with Study (optional, offline only) and Process, and pulled
// with Available and Retrieve. The Stretcher is not safe for concurrent use.
package stretcher

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/diag"
	"github.com/cwbudde/algo-stretch/internal/onset"
	"github.com/cwbudde/algo-stretch/internal/stretchcalc"
)

const (
	referenceRate = 48000.0
	referenceSize = 2048
	minFFTSize    = 256

	// minOnsetGap is the shortest spacing between two picked onsets.
	minOnsetGap = 0.05
)

var (
	ErrInvalidFlags      = errors.New("stretcher: invalid option flags")
	ErrInvalidRatio      = errors.New("stretcher: ratio must be positive and finite")
	ErrInvalidRate       = errors.New("stretcher: sample rate must be positive")
	ErrInvalidChannels   = errors.New("stretcher: channel count must not be negative")
	ErrRealTimeStudy     = errors.New("stretcher: study is not available in real-time mode")
	ErrStudyAfterProcess = errors.New("stretcher: study after process")
)

// Stretcher is the DSP state of one stream.
type Stretcher struct {
	sampleRate int
	flags      Flags
	timeRatio  float64
	pitch      float64

	size      int
	hop       int
	hopLocked bool

	plan  *algofft.Plan[complex128]
	win   []float64
	omega []float64

	chans []*channel
	log   *diag.Logger
	pool  *buffer.Pool

	keyFrom       []int
	keyTo         []int
	expectedInput int
	maxProcess    int
	curve         stretchcalc.Curve

	study *study

	// increments and onsets hold the calculated stretch of a studied
	// stream, one entry per analysis frame.
	increments   []float64
	onsets       []bool
	stretchDirty bool

	detector *onset.Detector
	picker   *onset.Picker
	mixMag   []float64

	stream streamState
}

// streamState tracks frame and output positions of the process pass.
type streamState struct {
	started  bool
	final    bool
	finished bool

	inputTotal int
	frame      int

	// outPos is the unrounded output centre of the next frame and
	// lastOut the rounded centre of the previous one.
	outPos  float64
	lastOut int

	// emitted counts output samples taken out of the accumulators,
	// including the half-window of lead-in that is dropped.
	emitted int

	// endOut is the unrounded output position of the end of input, or -1
	// until it is known. expected accumulates the output length after the
	// pitch stage.
	endOut   float64
	expected float64
	outLimit int

	produced  int
	retrieved int
}

// New returns a Stretcher for channels channels of audio at sampleRate.
// A nil log discards diagnostics.
func New(sampleRate, channels int, flags Flags, timeRatio, pitchScale float64, log *diag.Logger) (*Stretcher, error) {
	switch {
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, sampleRate)
	case channels < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	case !isFinitePositive(timeRatio):
		return nil, fmt.Errorf("%w: time ratio %v", ErrInvalidRatio, timeRatio)
	case !isFinitePositive(pitchScale):
		return nil, fmt.Errorf("%w: pitch scale %v", ErrInvalidRatio, pitchScale)
	}
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = diag.Discard()
	}

	size := fftSize(sampleRate, flags)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("stretcher: failed to create FFT plan: %w", err)
	}

	s := &Stretcher{
		sampleRate: sampleRate,
		flags:      flags,
		timeRatio:  timeRatio,
		pitch:      pitchScale,
		size:       size,
		plan:       plan,
		win:        window.Generate(window.TypeHann, size, window.WithPeriodic()),
		log:        log,
		pool:       buffer.NewPool(),
		curve:      stretchcalc.Curve{Ratio: timeRatio},
	}

	bins := size/2 + 1
	s.omega = make([]float64, bins)
	for k := range bins {
		s.omega[k] = 2 * math.Pi * float64(k) / float64(size)
	}

	s.chans = make([]*channel, channels)
	for i := range s.chans {
		s.chans[i] = newChannel(size, sampleRate, flags.Field(PitchMask))
	}

	s.detector = onset.NewDetector(flags.detectorKind(), bins)
	s.mixMag = make([]float64, bins)
	s.hop = s.hopFor()
	s.picker = onset.NewPicker(onset.Threshold(flags.detectorKind()), s.onsetGap())
	s.resetStream()

	log.Log(1, "stretcher created",
		"sampleRate", sampleRate, "channels", channels, "fftSize", size,
		"hop", s.hop, "timeRatio", timeRatio, "pitchScale", pitchScale)

	return s, nil
}

// fftSize returns the analysis frame length for sampleRate: 2048 at 48 kHz,
// scaled by the nearest power of two of the rate ratio and adjusted by the
// window option.
func fftSize(sampleRate int, flags Flags) int {
	scale := core.NearestPowerOfTwo(float64(sampleRate) / referenceRate)
	size := max(int(referenceSize*scale), minFFTSize)

	switch flags.Field(WindowMask) {
	case WindowShort:
		size /= 2
	case WindowLong:
		size *= 2
	}

	return size
}

// hopFor returns the analysis hop for the current ratios. The synthesis hop
// is kept at or below a quarter of the frame for large stretches.
func (s *Stretcher) hopFor() int {
	hop := s.size / 8

	if r := s.timeRatio * s.pitch; r > 2 {
		hop = max(s.size/64, int(float64(s.size)/(4*r)))
	}

	return max(hop, 1)
}

func (s *Stretcher) onsetGap() int {
	return max(1, int(math.Round(minOnsetGap*float64(s.sampleRate)/float64(s.hop))))
}

func (s *Stretcher) lockHop() {
	if s.hopLocked {
		return
	}

	s.hop = s.hopFor()
	s.hopLocked = true
	s.picker = onset.NewPicker(onset.Threshold(s.flags.detectorKind()), s.onsetGap())
}

func (s *Stretcher) resetStream() {
	s.stream = streamState{endOut: -1}
}

// Reset returns the Stretcher to its freshly constructed state while keeping
// the current ratios, options, key frames and hints.
func (s *Stretcher) Reset() {
	method := s.flags.Field(PitchMask)
	for _, c := range s.chans {
		c.reset(method)
	}

	s.study = nil
	s.increments = nil
	s.onsets = nil
	s.stretchDirty = false
	s.hopLocked = false
	s.hop = s.hopFor()
	s.picker = onset.NewPicker(onset.Threshold(s.flags.detectorKind()), s.onsetGap())
	s.detector.Reset()
	s.resetStream()
	s.reserve()

	s.log.Log(1, "stretcher reset")
}

// Channels returns the configured channel count.
func (s *Stretcher) Channels() int {
	return len(s.chans)
}

// SampleRate returns the configured sample rate.
func (s *Stretcher) SampleRate() int {
	return s.sampleRate
}

// Flags returns the current option word.
func (s *Stretcher) Flags() Flags {
	return s.flags
}

// FFTSize returns the analysis frame length.
func (s *Stretcher) FFTSize() int {
	return s.size
}

// Hop returns the analysis hop in input frames.
func (s *Stretcher) Hop() int {
	return s.hop
}

// TimeRatio returns the current time ratio.
func (s *Stretcher) TimeRatio() float64 {
	return s.timeRatio
}

// PitchScale returns the current pitch scale.
func (s *Stretcher) PitchScale() float64 {
	return s.pitch
}

// SetTimeRatio changes the output duration ratio for subsequent frames.
func (s *Stretcher) SetTimeRatio(ratio float64) error {
	if !isFinitePositive(ratio) {
		return fmt.Errorf("%w: time ratio %v", ErrInvalidRatio, ratio)
	}

	s.timeRatio = ratio
	s.ratiosChanged()
	s.log.Log(2, "time ratio changed", "timeRatio", ratio)

	return nil
}

// SetPitchScale changes the frequency scale for subsequent frames.
func (s *Stretcher) SetPitchScale(scale float64) error {
	if !isFinitePositive(scale) {
		return fmt.Errorf("%w: pitch scale %v", ErrInvalidRatio, scale)
	}

	s.pitch = scale
	s.ratiosChanged()
	s.log.Log(2, "pitch scale changed", "pitchScale", scale)

	return nil
}

func (s *Stretcher) ratiosChanged() {
	s.curve.Ratio = s.timeRatio
	if !s.hopLocked {
		s.hop = s.hopFor()
		s.picker = onset.NewPicker(onset.Threshold(s.flags.detectorKind()), s.onsetGap())
	}
	if s.study != nil {
		s.stretchDirty = true
	}
}

// SetTransientsOption replaces the transients field.
func (s *Stretcher) SetTransientsOption(value Flags) error {
	return s.setField(TransientsMask, value)
}

// SetDetectorOption replaces the detector field.
func (s *Stretcher) SetDetectorOption(value Flags) error {
	if err := s.setField(DetectorMask, value); err != nil {
		return err
	}

	kind := s.flags.detectorKind()
	s.detector.SetKind(kind)
	s.picker.SetFloor(onset.Threshold(kind))
	if s.study != nil {
		s.study.detector.SetKind(kind)
		s.stretchDirty = true
	}

	return nil
}

// SetPhaseOption replaces the phase field.
func (s *Stretcher) SetPhaseOption(value Flags) error {
	return s.setField(PhaseMask, value)
}

// SetFormantOption replaces the formant field.
func (s *Stretcher) SetFormantOption(value Flags) error {
	return s.setField(FormantMask, value)
}

// SetPitchOption replaces the pitch method. Audio held by the previous
// method's stage is flushed to the output first.
func (s *Stretcher) SetPitchOption(value Flags) error {
	old := s.flags.Field(PitchMask)
	if err := s.setField(PitchMask, value); err != nil {
		return err
	}

	method := s.flags.Field(PitchMask)
	if method == old {
		return nil
	}

	for _, c := range s.chans {
		c.staged = c.stage.flush(c.staged[:0], s.pitch)
		c.out.Write(c.staged)
		c.stage = newPitchStage(method)
	}
	if len(s.chans) > 0 {
		s.stream.produced += len(s.chans[0].staged)
	}

	return nil
}

func (s *Stretcher) setField(mask, value Flags) error {
	next := s.flags.With(mask, value)
	if value&^mask != 0 {
		return fmt.Errorf("%w: value %#x outside field %#x", ErrInvalidFlags, uint32(value), uint32(mask))
	}
	if err := next.Validate(); err != nil {
		return err
	}

	s.flags = next
	if mask == TransientsMask && s.study != nil {
		s.stretchDirty = true
	}
	s.log.Log(2, "option changed", "flags", fmt.Sprintf("%#x", uint32(next)))

	return nil
}

// Latency returns the number of input frames consumed before the first
// output frame can be produced.
func (s *Stretcher) Latency() int {
	latency := s.size - s.hop
	if len(s.chans) > 0 {
		latency += s.chans[0].stage.delaySamples()
	}

	return latency
}

// SamplesRequired returns how many more input frames the next analysis frame
// needs. It is 0 once the final block has been seen.
func (s *Stretcher) SamplesRequired() int {
	if len(s.chans) == 0 || s.stream.final {
		return 0
	}
	if !s.stream.started {
		return s.size / 2
	}

	return max(0, s.size-s.chans[0].in.Len())
}

// SetExpectedInputDuration sets the total input length used to place key
// frames when no study pass has measured it.
func (s *Stretcher) SetExpectedInputDuration(frames int) {
	s.expectedInput = max(frames, 0)
	s.rebuildCurve()
}

// SetMaxProcessSize pre-sizes the stream buffers for blocks of up to frames
// frames.
func (s *Stretcher) SetMaxProcessSize(frames int) {
	s.maxProcess = max(frames, 0)
	s.reserve()
}

func (s *Stretcher) reserve() {
	if s.maxProcess == 0 {
		return
	}

	for _, c := range s.chans {
		c.in.Grow(s.maxProcess + s.size)
		c.out.Grow(int(math.Ceil(float64(s.maxProcess)*s.timeRatio)) + s.size)
	}
}

// SetKeyFrameMap replaces the key-frame map with the pairs (from[i], to[i]).
// Pairs are sorted by source; pairs that would make the map non-monotonic
// are dropped with a warning when the map is applied.
func (s *Stretcher) SetKeyFrameMap(from, to []int) {
	s.keyFrom = append(s.keyFrom[:0], from...)
	s.keyTo = append(s.keyTo[:0], to...)
	s.rebuildCurve()
	if s.study != nil {
		s.stretchDirty = true
	}
}

func (s *Stretcher) rebuildCurve() {
	keys, dropped := stretchcalc.Normalize(s.keyFrom, s.keyTo, s.totalInput())
	if dropped > 0 {
		s.log.Warn("dropped key frames", "dropped", dropped, "kept", len(keys))
	}

	s.curve = stretchcalc.Curve{Keys: keys, Ratio: s.timeRatio}
}

// totalInput returns the best known total input length, or 0.
func (s *Stretcher) totalInput() int {
	if s.study != nil && s.study.total > 0 {
		return s.study.total
	}

	return s.expectedInput
}

// SetDebugLevel sets the diagnostic verbosity, 0 to 3.
func (s *Stretcher) SetDebugLevel(level int) {
	s.log.SetLevel(level)
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
