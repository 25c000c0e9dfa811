package stretch

import (
	"log/slog"
	"math"

	"github.com/cwbudde/algo-stretch/internal/diag"
)

// Config holds the construction parameters of an Engine.
type Config struct {
	SampleRate int
	Channels   int
	Options    Options
	TimeRatio  float64
	PitchScale float64
}

// DefaultConfig returns a Config for the given stream with unity ratios and
// default options.
func DefaultConfig(sampleRate, channels int) Config {
	return Config{
		SampleRate: sampleRate,
		Channels:   channels,
		TimeRatio:  1,
		PitchScale: 1,
	}
}

// Validate reports the first invalid field as a *ParameterError.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return &ParameterError{Name: "sample rate", Value: c.SampleRate}
	}
	if c.Channels < 0 {
		return &ParameterError{Name: "channels", Value: c.Channels}
	}
	if err := validateRatio("time ratio", c.TimeRatio); err != nil {
		return err
	}
	if err := validateRatio("pitch scale", c.PitchScale); err != nil {
		return err
	}

	return c.Options.Validate()
}

type engineConfig struct {
	logger     *slog.Logger
	debugLevel int
	maxProcess int
}

// Option configures Engine construction.
type Option func(*engineConfig)

// WithLogger sends diagnostics to l instead of stderr.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *engineConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithDebugLevel overrides the package default debug level for one Engine.
func WithDebugLevel(level int) Option {
	return func(cfg *engineConfig) {
		cfg.debugLevel = level
	}
}

// WithMaxProcessSize pre-sizes internal buffers for blocks of up to frames
// frames.
func WithMaxProcessSize(frames int) Option {
	return func(cfg *engineConfig) {
		if frames > 0 {
			cfg.maxProcess = frames
		}
	}
}

func defaultEngineConfig() engineConfig {
	return engineConfig{debugLevel: diag.DefaultLevel()}
}

// SetDefaultDebugLevel sets the debug level given to Engines created
// afterwards. Levels run from 0 (warnings only) to 3 (per-frame trace).
func SetDefaultDebugLevel(level int) {
	diag.SetDefaultLevel(level)
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
