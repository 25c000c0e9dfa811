package stretch

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/internal/diag"
	"github.com/cwbudde/algo-stretch/internal/stretcher"
)

// KeyFrame pins input frame Source to output frame Target.
type KeyFrame struct {
	Source int
	Target int
}

// handle owns the DSP core. release runs at most once, either from Close or
// from the cleanup registered on the Engine.
type handle struct {
	once sync.Once
	core *stretcher.Stretcher
}

func (h *handle) release() {
	h.once.Do(func() {
		h.core = nil
	})
}

// Engine stretches and pitch-shifts one multi-channel stream.
//
// An Engine is single-writer: calls must not overlap. Distinct Engines are
// independent.
type Engine struct {
	h       *handle
	cleanup runtime.Cleanup
	log     *diag.Logger

	sampleRate int
	channels   int
	options    Options

	// Last known values, served after Close.
	timeRatio  float64
	pitchScale float64
	latency    int
}

// New validates cfg and returns an Engine. On error no Engine is created.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ec := defaultEngineConfig()
	for _, opt := range opts {
		opt(&ec)
	}

	log := diag.New(ec.logger, "stretch")
	log.SetLevel(ec.debugLevel)

	core, err := stretcher.New(cfg.SampleRate, cfg.Channels, cfg.Options.flags(),
		cfg.TimeRatio, cfg.PitchScale, log)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}
	if ec.maxProcess > 0 {
		core.SetMaxProcessSize(ec.maxProcess)
	}

	e := &Engine{
		h:          &handle{core: core},
		log:        log,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		options:    cfg.Options,
		timeRatio:  cfg.TimeRatio,
		pitchScale: cfg.PitchScale,
		latency:    core.Latency(),
	}
	e.cleanup = runtime.AddCleanup(e, func(h *handle) { h.release() }, e.h)

	return e, nil
}

// core returns the DSP core, or nil once the Engine is closed.
func (e *Engine) core() *stretcher.Stretcher {
	return e.h.core
}

// Close releases the DSP core. It is safe to call more than once.
func (e *Engine) Close() error {
	if c := e.core(); c != nil {
		e.latency = c.Latency()
		e.log.Log(1, "engine closed")
	}

	e.cleanup.Stop()
	e.h.release()

	return nil
}

// Reset clears all stream state. The ratios, options, key-frame map and
// hints are kept.
func (e *Engine) Reset() {
	defer runtime.KeepAlive(e)

	if c := e.core(); c != nil {
		c.Reset()
	}
}

// SampleRate returns the configured sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// ChannelCount returns the configured channel count.
func (e *Engine) ChannelCount() int { return e.channels }

// Options returns the current option set.
func (e *Engine) Options() Options { return e.options }

// TimeRatio returns the current time ratio.
func (e *Engine) TimeRatio() float64 { return e.timeRatio }

// PitchScale returns the current pitch scale.
func (e *Engine) PitchScale() float64 { return e.pitchScale }

// SetTimeRatio changes the output duration ratio. It takes effect from the
// next processed frame.
func (e *Engine) SetTimeRatio(ratio float64) error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}
	if err := validateRatio("time ratio", ratio); err != nil {
		return err
	}
	if err := c.SetTimeRatio(ratio); err != nil {
		return fmt.Errorf("stretch: %w", err)
	}
	e.timeRatio = ratio

	return nil
}

// SetPitchScale changes the frequency scale. It takes effect from the next
// processed frame.
func (e *Engine) SetPitchScale(scale float64) error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}
	if err := validateRatio("pitch scale", scale); err != nil {
		return err
	}
	if err := c.SetPitchScale(scale); err != nil {
		return fmt.Errorf("stretch: %w", err)
	}
	e.pitchScale = scale

	return nil
}

// SetTransientsOption changes transient handling.
func (e *Engine) SetTransientsOption(t Transients) error {
	if !inRange(t, transientsNames) {
		return &ParameterError{Name: "transients", Value: t}
	}

	return e.setOption(func(c *stretcher.Stretcher) error {
		return c.SetTransientsOption(t.flags())
	}, func(o *Options) { o.Transients = t })
}

// SetDetectorOption changes the onset detector.
func (e *Engine) SetDetectorOption(d Detector) error {
	if !inRange(d, detectorNames) {
		return &ParameterError{Name: "detector", Value: d}
	}

	return e.setOption(func(c *stretcher.Stretcher) error {
		return c.SetDetectorOption(d.flags())
	}, func(o *Options) { o.Detector = d })
}

// SetPhaseOption changes inter-bin phase handling.
func (e *Engine) SetPhaseOption(p Phase) error {
	if !inRange(p, phaseNames) {
		return &ParameterError{Name: "phase", Value: p}
	}

	return e.setOption(func(c *stretcher.Stretcher) error {
		return c.SetPhaseOption(p.flags())
	}, func(o *Options) { o.Phase = p })
}

// SetFormantOption changes formant handling.
func (e *Engine) SetFormantOption(f Formant) error {
	if !inRange(f, formantNames) {
		return &ParameterError{Name: "formant", Value: f}
	}

	return e.setOption(func(c *stretcher.Stretcher) error {
		return c.SetFormantOption(f.flags())
	}, func(o *Options) { o.Formant = f })
}

// SetPitchOption changes the pitch-shifting resampler.
func (e *Engine) SetPitchOption(p PitchMethod) error {
	if !inRange(p, pitchNames) {
		return &ParameterError{Name: "pitch method", Value: p}
	}

	return e.setOption(func(c *stretcher.Stretcher) error {
		return c.SetPitchOption(p.flags())
	}, func(o *Options) { o.Pitch = p })
}

func (e *Engine) setOption(apply func(*stretcher.Stretcher) error, record func(*Options)) error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}
	if err := apply(c); err != nil {
		return fmt.Errorf("stretch: %w", err)
	}
	record(&e.options)

	return nil
}

// Latency returns the processing latency in input frames.
func (e *Engine) Latency() int {
	defer runtime.KeepAlive(e)

	if c := e.core(); c != nil {
		e.latency = c.Latency()
	}

	return e.latency
}

// SetExpectedInputDuration tells the stretch calculator the total input
// length, used to place key frames when no study pass measured it.
func (e *Engine) SetExpectedInputDuration(frames int) {
	defer runtime.KeepAlive(e)

	if c := e.core(); c != nil {
		c.SetExpectedInputDuration(frames)
	}
}

// SamplesRequired returns how many more input frames the next analysis step
// needs. It may be 0 while output is still pending.
func (e *Engine) SamplesRequired() int {
	defer runtime.KeepAlive(e)

	if c := e.core(); c != nil {
		return c.SamplesRequired()
	}

	return 0
}

// SetMaxProcessSize pre-sizes internal buffers for blocks of up to frames
// frames.
func (e *Engine) SetMaxProcessSize(frames int) {
	defer runtime.KeepAlive(e)

	if c := e.core(); c != nil {
		c.SetMaxProcessSize(frames)
	}
}

// SetKeyFrameMap replaces the key-frame map. An empty map removes it.
func (e *Engine) SetKeyFrameMap(keys []KeyFrame) {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return
	}

	from := make([]int, len(keys))
	to := make([]int, len(keys))
	for i, k := range keys {
		from[i] = k.Source
		to[i] = k.Target
	}
	c.SetKeyFrameMap(from, to)
}

// SetDebugLevel sets this Engine's diagnostic verbosity, 0 to 3.
func (e *Engine) SetDebugLevel(level int) {
	e.log.SetLevel(level)
}

// CalculateStretch finalizes the stretch curve from the study data. Process
// calls it implicitly after a study pass.
func (e *Engine) CalculateStretch() error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}
	c.CalculateStretch()

	return nil
}

// validate checks a buffer set for op and returns its frame count.
func (e *Engine) validate(op string, in buffer.Set) (int, error) {
	n, mismatch, ok := in.UniformLen()
	if !ok {
		return 0, &ChannelLengthError{Op: op, Channel: mismatch, Len: len(in[mismatch]), Want: n}
	}
	if len(in) != e.channels {
		return 0, &ChannelCountError{Op: op, Got: len(in), Want: e.channels}
	}

	return n, nil
}

// Study feeds in to the offline analysis pass. All channels must have equal
// length and the set must have ChannelCount channels.
func (e *Engine) Study(in buffer.Set, final bool) error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}

	n, err := e.validate("study", in)
	if err != nil {
		return err
	}

	return c.Study(in, n, final)
}

// Process feeds in to the stretcher. final marks the last block of the
// stream.
func (e *Engine) Process(in buffer.Set, final bool) error {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return ErrClosed
	}

	n, err := e.validate("process", in)
	if err != nil {
		return err
	}

	if err := c.Process(in, n, final); err != nil {
		return fmt.Errorf("stretch: %w", err)
	}

	return nil
}

// StudyBuffers is Study for per-channel Buffers.
func (e *Engine) StudyBuffers(in []*buffer.Buffer, final bool) error {
	set, release := buffer.Gather(in)
	defer release()

	return e.Study(set, final)
}

// ProcessBuffers is Process for per-channel Buffers.
func (e *Engine) ProcessBuffers(in []*buffer.Buffer, final bool) error {
	set, release := buffer.Gather(in)
	defer release()

	return e.Process(set, final)
}

// Available returns the number of frames ready to retrieve. ok is false once
// the final block has been processed and all output retrieved, or after
// Close.
func (e *Engine) Available() (frames int, ok bool) {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return 0, false
	}

	n := c.Available()
	if n < 0 {
		return 0, false
	}

	return n, true
}

// RetrieveInto copies up to maxFrames ready frames into dst and returns the
// count. The count is also bounded by the shortest channel of dst.
func (e *Engine) RetrieveInto(dst buffer.Set, maxFrames int) (int, error) {
	defer runtime.KeepAlive(e)

	c := e.core()
	if c == nil {
		return 0, ErrClosed
	}
	if len(dst) != e.channels {
		return 0, &ChannelCountError{Op: "retrieve", Got: len(dst), Want: e.channels}
	}

	n := min(maxFrames, dst.Frames())
	if n <= 0 {
		return 0, nil
	}

	return c.Retrieve(dst, n), nil
}

// Retrieve returns up to maxFrames ready frames in a newly allocated set.
func (e *Engine) Retrieve(maxFrames int) (buffer.Set, error) {
	dst := buffer.NewSet(e.channels, max(maxFrames, 0))

	n, err := e.RetrieveInto(dst, maxFrames)
	if err != nil {
		return nil, err
	}

	return dst.Truncate(n), nil
}
