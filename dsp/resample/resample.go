package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid rate or scale.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality selects the anti-aliasing filter.
type Quality int

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

// profile holds the filter parameters of one quality mode.
type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

var profiles = [...]profile{
	QualityFast:     {tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0},
	QualityBalanced: {tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5},
	QualityBest:     {tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0},
}

type config struct {
	quality Quality
	maxDen  int
}

// Option configures a Resampler.
type Option func(*config)

// WithQuality selects a filter quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		if q >= QualityFast && q <= QualityBest {
			cfg.quality = q
		}
	}
}

// WithMaxDenominator caps the denominator used when a real-valued ratio is
// approximated by a fraction. Smaller values give shorter filter banks.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{quality: QualityBalanced, maxDen: 4096}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Resampler converts a stream by the rational factor up/down with a
// polyphase FIR. It keeps filter history between calls.
type Resampler struct {
	up, down int
	phases   [][]float64
	span     int // longest polyphase branch
	nTaps    int

	phase   int
	next    int // absolute input index of the next output
	totalIn int
	history []float64
	work    []float64
}

// NewRational returns a Resampler producing up output samples for every
// down input samples.
func NewRational(up, down int, opts ...Option) (*Resampler, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	cfg := newConfig(opts)
	p := profiles[cfg.quality]

	phases, span, err := designPolyphaseFIR(up, down, p)
	if err != nil {
		return nil, err
	}

	return &Resampler{
		up:      up,
		down:    down,
		phases:  phases,
		span:    span,
		nTaps:   p.tapsPerPhase * up,
		history: make([]float64, 0, max(0, span-1)),
	}, nil
}

// NewForRates returns a Resampler for the conversion inRate to outRate.
func NewForRates(inRate, outRate float64, opts ...Option) (*Resampler, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	return newApproximate(outRate/inRate, opts)
}

// NewForScale returns a Resampler that raises every frequency by scale when
// its output is played at the input rate. A scale of 2 halves the sample
// count.
func NewForScale(scale float64, opts ...Option) (*Resampler, error) {
	if !validRate(scale) {
		return nil, ErrInvalidRate
	}

	return newApproximate(1/scale, opts)
}

func newApproximate(ratio float64, opts []Option) (*Resampler, error) {
	up, down := approximateRatio(ratio, newConfig(opts).maxDen)
	return NewRational(up, down, opts...)
}

func validRate(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Reset clears the filter history.
func (r *Resampler) Reset() {
	r.phase = 0
	r.next = 0
	r.totalIn = 0
	r.history = r.history[:0]
}

// Process converts one block and returns the produced samples.
func (r *Resampler) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	return r.AppendProcess(make([]float64, 0, r.PredictOutputLen(len(input))), input)
}

// AppendProcess converts one block and appends the produced samples to dst.
func (r *Resampler) AppendProcess(dst, input []float64) []float64 {
	if len(input) == 0 {
		return dst
	}

	n := len(r.history) + len(input)
	if cap(r.work) < n {
		r.work = make([]float64, n)
	}
	work := r.work[:n]
	copy(work, r.history)
	copy(work[len(r.history):], input)

	base := r.totalIn - len(r.history)
	last := r.totalIn + len(input) - 1

	for ; r.next <= last; r.advance() {
		var y float64
		for k, c := range r.phases[r.phase] {
			if idx := r.next - k; idx >= base {
				y += c * work[idx-base]
			}
		}
		dst = append(dst, y)
	}

	r.totalIn += len(input)

	keep := min(max(0, r.span-1), len(work))
	r.history = append(r.history[:0], work[len(work)-keep:]...)

	return dst
}

func (r *Resampler) advance() {
	r.phase += r.down
	r.next += r.phase / r.up
	r.phase %= r.up
}

// Flush pushes zeros through the filter until the samples held back by its
// group delay are out, appending them to dst.
func (r *Resampler) Flush(dst []float64) []float64 {
	if r.span == 0 {
		return dst
	}

	return r.AppendProcess(dst, make([]float64, r.span))
}

// Delay returns the filter group delay in output samples, rounded.
func (r *Resampler) Delay() int {
	if r.nTaps == 0 {
		return 0
	}

	return int(math.Round(float64(r.nTaps-1) / float64(2*r.down)))
}

// PredictOutputLen returns how many samples the next Process call of
// inputLen samples will produce.
func (r *Resampler) PredictOutputLen(inputLen int) int {
	if inputLen <= 0 {
		return 0
	}

	last := r.totalIn + inputLen - 1
	next, phase := r.next, r.phase

	count := 0
	for next <= last {
		count++
		phase += r.down
		next += phase / r.up
		phase %= r.up
	}

	return count
}

// Ratio returns the reduced conversion factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// Scale returns the frequency scale the fraction actually realizes.
func (r *Resampler) Scale() float64 {
	return float64(r.down) / float64(r.up)
}
