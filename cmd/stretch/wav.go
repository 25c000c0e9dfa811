package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

var errInvalidWAV = errors.New("not a valid WAV file")

// audioFile is decoded PCM audio, one float64 slice per channel in [-1, 1].
type audioFile struct {
	SampleRate int
	BitDepth   int
	Channels   buffer.Set
}

// readWAV decodes a 16, 24 or 32-bit integer PCM WAV file.
func readWAV(path string) (*audioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, errInvalidWAV)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}

	channels := buf.Format.NumChannels
	bitDepth := int(d.BitDepth)
	if channels <= 0 {
		return nil, fmt.Errorf("%s: %w: %d channels", path, errInvalidWAV, channels)
	}
	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, bitDepth)
	}

	frames := len(buf.Data) / channels
	set := buffer.NewSet(channels, frames)
	scale := 1 / fullScale(bitDepth)
	for i := range frames {
		for ch := range channels {
			set[ch][i] = float64(buf.Data[i*channels+ch]) * scale
		}
	}

	return &audioFile{
		SampleRate: buf.Format.SampleRate,
		BitDepth:   bitDepth,
		Channels:   set,
	}, nil
}

// writeWAV encodes a as integer PCM at a.BitDepth.
func writeWAV(path string, a *audioFile) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	channels := a.Channels.Channels()
	frames := a.Channels.Frames()

	e := wav.NewEncoder(f, a.SampleRate, a.BitDepth, channels, 1)

	peak := fullScale(a.BitDepth)
	data := make([]int, frames*channels)
	for i := range frames {
		for ch := range channels {
			v := math.Round(a.Channels[ch][i] * peak)
			data[i*channels+ch] = int(min(max(v, -peak), peak-1))
		}
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           data,
		SourceBitDepth: a.BitDepth,
	}

	if err := e.Write(buf); err != nil {
		return fmt.Errorf("%s: encode: %w", path, err)
	}

	return e.Close()
}

// fullScale returns the magnitude of the most negative sample at bitDepth.
func fullScale(bitDepth int) float64 {
	return math.Exp2(float64(bitDepth - 1))
}
