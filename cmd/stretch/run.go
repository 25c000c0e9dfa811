package main

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/stretch"
)

// stretchFile runs the full study/process/retrieve protocol over inPath and
// writes the result to outPath.
func stretchFile(cfg Config, inPath, outPath string, log *slog.Logger) error {
	in, err := readWAV(inPath)
	if err != nil {
		return err
	}

	out, err := stretchAudio(cfg, in, log)
	if err != nil {
		return err
	}

	if err := writeWAV(outPath, out); err != nil {
		return err
	}

	log.Info("wrote output",
		"path", outPath, "inputFrames", in.Channels.Frames(), "outputFrames", out.Channels.Frames())

	return nil
}

// stretchAudio streams in through an Engine in blocks of cfg.Block frames.
func stretchAudio(cfg Config, in *audioFile, log *slog.Logger) (*audioFile, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	e, err := stretch.New(stretch.Config{
		SampleRate: in.SampleRate,
		Channels:   in.Channels.Channels(),
		Options:    opts,
		TimeRatio:  cfg.Time,
		PitchScale: cfg.PitchScale(),
	}, stretch.WithLogger(log), stretch.WithDebugLevel(cfg.Debug), stretch.WithMaxProcessSize(cfg.Block))
	if err != nil {
		return nil, err
	}
	defer e.Close()

	frames := in.Channels.Frames()
	if keys := cfg.KeyFrameMap(); len(keys) > 0 {
		e.SetKeyFrameMap(keys)
		e.SetExpectedInputDuration(frames)
	}

	if !cfg.RealTime {
		err := eachBlock(in.Channels, cfg.Block, func(block buffer.Set, final bool) error {
			return e.Study(block, final)
		})
		if err != nil {
			return nil, fmt.Errorf("study: %w", err)
		}
	}

	log.Debug("processing", "frames", frames, "latency", e.Latency(), "block", cfg.Block)

	result := make(buffer.Set, in.Channels.Channels())
	err = eachBlock(in.Channels, cfg.Block, func(block buffer.Set, final bool) error {
		if err := e.Process(block, final); err != nil {
			return err
		}
		return collect(e, result, cfg.Block)
	})
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	return &audioFile{SampleRate: in.SampleRate, BitDepth: in.BitDepth, Channels: result}, nil
}

// eachBlock calls fn for consecutive blocks of set. The last call has final
// set; an empty set yields one empty final block.
func eachBlock(set buffer.Set, block int, fn func(buffer.Set, bool) error) error {
	total := set.Frames()
	view := make(buffer.Set, len(set))

	for pos := 0; ; pos += block {
		end := min(pos+block, total)
		for ch := range set {
			view[ch] = set[ch][pos:end]
		}

		final := end == total
		if err := fn(view, final); err != nil {
			return err
		}
		if final {
			return nil
		}
	}
}

// collect appends all ready output to dst.
func collect(e *stretch.Engine, dst buffer.Set, block int) error {
	scratch := buffer.NewSet(len(dst), block)

	for {
		n, ok := e.Available()
		if !ok || n == 0 {
			return nil
		}

		got, err := e.RetrieveInto(scratch, n)
		if err != nil {
			return err
		}
		for ch := range dst {
			dst[ch] = append(dst[ch], scratch[ch][:got]...)
		}
	}
}
