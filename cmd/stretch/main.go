// Command stretch changes the duration and pitch of a WAV file.
//
// Usage:
//
//	stretch [flags] <input.wav> <output.wav>
//
// Examples:
//
//	stretch -t 1.5 speech.wav slow.wav
//	stretch --semitones 3 --formant song.wav up.wav
//	stretch -c settings.yaml --print-config in.wav out.wav
//
// Every flag can also be set in the config file or through an environment
// variable named STRETCH_<KEY>, e.g. STRETCH_PITCH_METHOD=quality.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-stretch/internal/diag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stretch:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		printConfig bool
	)

	cmd := &cobra.Command{
		Use:           "stretch [flags] <input.wav> <output.wav>",
		Short:         "Time-stretch and pitch-shift WAV audio",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}

			if printConfig {
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
			}

			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: diag.LevelTrace}))

			return stretchFile(cfg, args[0], args[1], log)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	fs.BoolVar(&printConfig, "print-config", false, "print the resolved configuration as YAML")

	fs.Float64P("time", "t", 1, "time ratio; 2 doubles the duration")
	fs.Float64P("pitch", "p", 1, "pitch scale; 2 raises by an octave")
	fs.Float64("semitones", 0, "pitch shift in semitones, applied on top of --pitch")
	fs.String("transients", "crisp", "transient handling: crisp, mixed or smooth")
	fs.String("detector", "compound", "onset detector: compound, percussive or soft")
	fs.String("phase", "laminar", "phase handling: laminar or independent")
	fs.Bool("formant", false, "preserve formants when shifting pitch")
	fs.String("pitch-method", "speed", "pitch resampler: speed, quality or consistency")
	fs.String("window", "standard", "analysis window: standard, short or long")
	fs.Bool("together", false, "process stereo as mid/side")
	fs.Bool("realtime", false, "skip the study pass and detect onsets on the fly")
	fs.IntP("block", "b", 4096, "frames per processing block")
	fs.String("keyframes", "", "file with a keyframes list of {source, target} frame pairs")
	fs.IntP("debug", "d", 0, "debug level 0-3")

	return cmd
}
