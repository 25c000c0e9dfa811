package resample

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-stretch/internal/testutil"
)

func TestNewRationalValidation(t *testing.T) {
	if _, err := NewRational(0, 1); err == nil {
		t.Fatal("expected error for up=0")
	}
	if _, err := NewRational(1, 0); err == nil {
		t.Fatal("expected error for down=0")
	}
	if _, err := NewForScale(0); err == nil {
		t.Fatal("expected error for scale 0")
	}
	if _, err := NewForScale(math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite scale")
	}
}

func TestRatioReduction(t *testing.T) {
	r, err := NewRational(320, 294)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	if up, down := r.Ratio(); up != 160 || down != 147 {
		t.Fatalf("ratio = %d/%d, want 160/147", up, down)
	}
}

func TestNewForScaleRealizesScale(t *testing.T) {
	for _, scale := range []float64{0.5, 0.75, 1.25, 2, math.Exp2(7.0 / 12)} {
		r, err := NewForScale(scale, WithMaxDenominator(64))
		if err != nil {
			t.Fatalf("NewForScale(%v) error = %v", scale, err)
		}
		if got := r.Scale(); math.Abs(got-scale)/scale > 2e-3 {
			t.Fatalf("NewForScale(%v).Scale() = %v", scale, got)
		}
		if up, _ := r.Ratio(); up > 64 {
			t.Fatalf("NewForScale(%v): up = %d exceeds denominator cap", scale, up)
		}
	}
}

func TestPredictOutputLenMatchesProcess(t *testing.T) {
	r, err := NewRational(3, 2)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := testutil.DeterministicSine(1000, 48000, 1, 257)
	want := r.PredictOutputLen(len(in))
	if got := len(r.Process(in)); got != want {
		t.Fatalf("len(out) = %d, want %d", got, want)
	}
}

func TestPitchScaleOutputLength(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
	}{
		{name: "octave up", scale: 2},
		{name: "fifth up", scale: 1.5},
		{name: "octave down", scale: 0.5},
		{name: "minor third down", scale: 5.0 / 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewForScale(tt.scale)
			if err != nil {
				t.Fatalf("NewForScale() error = %v", err)
			}

			in := testutil.DeterministicSine(1000, 48000, 1, 4096)
			out := r.Process(in)

			want := int(math.Round(float64(len(in)) / tt.scale))
			if d := len(out) - want; d < -1 || d > 1 {
				t.Fatalf("len=%d, want about %d", len(out), want)
			}
		})
	}
}

func TestStreamingConsistency(t *testing.T) {
	whole, err := NewForScale(1.25)
	if err != nil {
		t.Fatalf("NewForScale() error = %v", err)
	}
	chunked, err := NewForScale(1.25)
	if err != nil {
		t.Fatalf("NewForScale() error = %v", err)
	}

	in := testutil.DeterministicNoise(3, 1, 8192)
	want := whole.Process(in)

	var got []float64
	for i := 0; i < len(in); i += 257 {
		got = chunked.AppendProcess(got, in[i:min(len(in), i+257)])
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestAppendProcessKeepsPrefix(t *testing.T) {
	r1, err := NewRational(2, 3)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}
	r2, err := NewRational(2, 3)
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := testutil.DeterministicSine(440, 48000, 1, 1500)
	want := append([]float64{7, 8}, r1.Process(in)...)

	testutil.RequireSliceNearlyEqual(t, r2.AppendProcess([]float64{7, 8}, in), want, 0)
}

func TestResetReplays(t *testing.T) {
	r, err := NewForScale(0.8)
	if err != nil {
		t.Fatalf("NewForScale() error = %v", err)
	}

	in := testutil.DeterministicNoise(9, 1, 600)
	first := r.Flush(r.Process(in))
	r.Reset()
	second := r.Flush(r.Process(in))

	testutil.RequireSliceNearlyEqual(t, second, first, 0)
}

func TestDelayAlignsImpulse(t *testing.T) {
	tests := []struct {
		name     string
		up, down int
	}{
		{name: "identity", up: 1, down: 1},
		{name: "down2", up: 1, down: 2},
		{name: "up3", up: 3, down: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRational(tc.up, tc.down, WithQuality(QualityBest))
			if err != nil {
				t.Fatalf("NewRational() error = %v", err)
			}

			// Put the impulse on an input index that maps onto an output sample.
			out := r.Flush(r.Process(testutil.Impulse(512, 64*tc.down)))

			peak := 0
			for i := range out {
				if math.Abs(out[i]) > math.Abs(out[peak]) {
					peak = i
				}
			}

			want := 64*tc.up + r.Delay()
			if d := peak - want; d < -1 || d > 1 {
				t.Fatalf("peak at %d, want %d (delay %d)", peak, want, r.Delay())
			}
		})
	}
}

func TestFlushDrainsTail(t *testing.T) {
	r, err := NewRational(1, 1, WithQuality(QualityBalanced))
	if err != nil {
		t.Fatalf("NewRational() error = %v", err)
	}

	in := testutil.DeterministicSine(1000, 48000, 1, 1024)
	out := r.Process(in)
	if len(out) != len(in) {
		t.Fatalf("len=%d, want %d", len(out), len(in))
	}

	out = r.Flush(out)
	if len(out) < len(in)+r.Delay() {
		t.Fatalf("len=%d, want at least %d", len(out), len(in)+r.Delay())
	}

	// Samples held back by the group delay carry the end of the sine.
	if tail := testutil.RMS(out[len(in) : len(in)+r.Delay()]); tail < 0.1 {
		t.Fatalf("tail rms=%v, want signal", tail)
	}
}

func sine(freq, sampleRate float64, n int) []float64 {
	return testutil.DeterministicSine(freq, sampleRate, 1, n)
}

func rms(x []float64) float64 { return testutil.RMS(x) }

func dbRatio(out, in float64) float64 {
	if in == 0 || out == 0 {
		return -300
	}
	return 20 * math.Log10(out/in)
}
