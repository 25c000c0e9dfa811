package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
)

const envPrefix = "STRETCH"

// Config is the resolved command configuration. Values come from, in
// increasing priority: defaults, the config file, STRETCH_* environment
// variables and command-line flags.
type Config struct {
	Time        float64 `mapstructure:"time" yaml:"time"`
	Pitch       float64 `mapstructure:"pitch" yaml:"pitch"`
	Semitones   float64 `mapstructure:"semitones" yaml:"semitones"`
	Transients  string  `mapstructure:"transients" yaml:"transients"`
	Detector    string  `mapstructure:"detector" yaml:"detector"`
	Phase       string  `mapstructure:"phase" yaml:"phase"`
	Formant     bool    `mapstructure:"formant" yaml:"formant"`
	PitchMethod string  `mapstructure:"pitch_method" yaml:"pitch_method"`
	Window      string  `mapstructure:"window" yaml:"window"`
	Together    bool    `mapstructure:"together" yaml:"together"`
	RealTime    bool    `mapstructure:"realtime" yaml:"realtime"`
	Block       int     `mapstructure:"block" yaml:"block"`
	Debug       int     `mapstructure:"debug" yaml:"debug"`

	KeyFramesFile string           `mapstructure:"keyframes_file" yaml:"keyframes_file,omitempty"`
	KeyFrames     []KeyFrameConfig `mapstructure:"keyframes" yaml:"keyframes,omitempty"`
}

// KeyFrameConfig maps input frame Source to output frame Target.
type KeyFrameConfig struct {
	Source int `mapstructure:"source" yaml:"source"`
	Target int `mapstructure:"target" yaml:"target"`
}

// flagKeys binds command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"time":         "time",
	"pitch":        "pitch",
	"semitones":    "semitones",
	"transients":   "transients",
	"detector":     "detector",
	"phase":        "phase",
	"formant":      "formant",
	"pitch-method": "pitch_method",
	"window":       "window",
	"together":     "together",
	"realtime":     "realtime",
	"block":        "block",
	"debug":        "debug",
	"keyframes":    "keyframes_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("time", 1.0)
	v.SetDefault("pitch", 1.0)
	v.SetDefault("semitones", 0.0)
	v.SetDefault("transients", stretch.TransientsCrisp.String())
	v.SetDefault("detector", stretch.DetectorCompound.String())
	v.SetDefault("phase", stretch.PhaseLaminar.String())
	v.SetDefault("formant", false)
	v.SetDefault("pitch_method", stretch.PitchHighSpeed.String())
	v.SetDefault("window", stretch.WindowStandard.String())
	v.SetDefault("together", false)
	v.SetDefault("realtime", false)
	v.SetDefault("block", 4096)
	v.SetDefault("debug", 0)
}

// LoadConfig resolves the configuration from path (optional), the
// environment and the flags that were set on fs.
func LoadConfig(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.KeyFramesFile != "" {
		keys, err := loadKeyFrames(cfg.KeyFramesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.KeyFrames = keys
	}

	return cfg, cfg.Validate()
}

// loadKeyFrames reads a YAML, JSON or TOML file holding a "keyframes" list of
// {source, target} entries.
func loadKeyFrames(path string) ([]KeyFrameConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read key frames: %w", err)
	}

	var keys []KeyFrameConfig
	if err := decodeSettings(v.Get("keyframes"), &keys); err != nil {
		return nil, fmt.Errorf("decode key frames: %w", err)
	}

	return keys, nil
}

func decodeSettings(input, out any) error {
	if input == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           out,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func normalizeKey(value string) string {
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

// Validate checks the ranges and names in c.
func (c Config) Validate() error {
	var errs []error

	if !(c.Time > 0) || math.IsInf(c.Time, 0) {
		errs = append(errs, fmt.Errorf("time must be positive: %v", c.Time))
	}
	if !(c.Pitch > 0) || math.IsInf(c.Pitch, 0) {
		errs = append(errs, fmt.Errorf("pitch must be positive: %v", c.Pitch))
	}
	if c.Block <= 0 {
		errs = append(errs, fmt.Errorf("block must be positive: %d", c.Block))
	}
	if _, err := c.Options(); err != nil {
		errs = append(errs, err)
	}
	for i, k := range c.KeyFrames {
		if k.Source < 0 || k.Target < 0 {
			errs = append(errs, fmt.Errorf("keyframes[%d]: negative frame", i))
		}
	}

	return errors.Join(errs...)
}

// PitchScale returns the effective frequency scale including Semitones.
func (c Config) PitchScale() float64 {
	return c.Pitch * math.Exp2(c.Semitones/12)
}

// Options converts the option names into an Options value.
func (c Config) Options() (stretch.Options, error) {
	var (
		o   stretch.Options
		err error
	)

	if o.Transients, err = stretch.ParseTransients(c.Transients); err != nil {
		return o, err
	}
	if o.Detector, err = stretch.ParseDetector(c.Detector); err != nil {
		return o, err
	}
	if o.Phase, err = stretch.ParsePhase(c.Phase); err != nil {
		return o, err
	}
	if o.Pitch, err = stretch.ParsePitchMethod(c.PitchMethod); err != nil {
		return o, err
	}
	if o.Window, err = stretch.ParseWindow(c.Window); err != nil {
		return o, err
	}

	if c.Formant {
		o.Formant = stretch.FormantPreserved
	}
	if c.Together {
		o.Channels = stretch.ChannelsTogether
	}
	if c.RealTime {
		o.Process = stretch.ProcessRealTime
	}

	return o, nil
}

// KeyFrameMap returns the configured key frames.
func (c Config) KeyFrameMap() []stretch.KeyFrame {
	keys := make([]stretch.KeyFrame, len(c.KeyFrames))
	for i, k := range c.KeyFrames {
		keys[i] = stretch.KeyFrame{Source: k.Source, Target: k.Target}
	}

	return keys
}
