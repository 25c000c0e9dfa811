package stretcher

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-stretch/internal/testutil"
)

func TestPitchStagePassThroughAtUnity(t *testing.T) {
	for _, method := range []Flags{PitchHighSpeed, PitchHighQuality} {
		p := newPitchStage(method)
		in := []float64{1, 2, 3, 4}

		out, err := p.process(nil, in, 1)
		if err != nil {
			t.Fatalf("process() error = %v", err)
		}
		testutil.RequireSliceNearlyEqual(t, out, in, 0)

		if p.engaged() {
			t.Fatalf("method %#x engaged at unity pitch", uint32(method))
		}
	}
}

func TestPitchStageOutputCount(t *testing.T) {
	tests := []struct {
		name   string
		method Flags
		pitch  float64
	}{
		{name: "linear up", method: PitchHighSpeed, pitch: 1.5},
		{name: "cubic down", method: PitchHighConsistency, pitch: 0.75},
		{name: "polyphase up", method: PitchHighQuality, pitch: 1.25},
		{name: "polyphase down", method: PitchHighQuality, pitch: 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPitchStage(tt.method)
			in := testutil.DeterministicSine(500, 44100, 0.5, 4000)

			var out []float64
			var err error
			for pos := 0; pos < len(in); pos += 500 {
				out, err = p.process(out, in[pos:pos+500], tt.pitch)
				if err != nil {
					t.Fatalf("process() error = %v", err)
				}
			}
			out = p.flush(out, tt.pitch)

			want := float64(len(in)) / tt.pitch
			if math.Abs(float64(len(out))-want) > 4 {
				t.Fatalf("output length = %d, want about %.0f", len(out), want)
			}
			testutil.RequireFinite(t, out)
		})
	}
}

func TestPolyphaseDelayCompensated(t *testing.T) {
	p := newPitchStage(PitchHighQuality)
	in := testutil.Impulse(2000, 1000)

	out, err := p.process(nil, in, 0.5)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	out = p.flush(out, 0.5)

	peak := 0
	for i, v := range out {
		if math.Abs(v) > math.Abs(out[peak]) {
			peak = i
		}
	}

	if peak < 1998 || peak > 2002 {
		t.Fatalf("impulse peak at %d, want about 2000", peak)
	}
}

func TestFlagsWithAndField(t *testing.T) {
	f := TransientsMixed | PitchHighQuality
	f = f.With(TransientsMask, TransientsSmooth)

	if f.Field(TransientsMask) != TransientsSmooth {
		t.Fatalf("transients = %#x, want smooth", uint32(f.Field(TransientsMask)))
	}
	if f.Field(PitchMask) != PitchHighQuality {
		t.Fatal("With changed an unrelated field")
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestFormantCorrectorUnityPitchNoOp(t *testing.T) {
	s := mustNew(t, 1, FormantPreserved, 1, 1)
	mag := make([]float64, s.size/2+1)
	for k := range mag {
		mag[k] = 1 / float64(k+1)
	}
	want := append([]float64(nil), mag...)

	if err := s.chans[0].formant.correct(s.plan, mag, 1); err != nil {
		t.Fatalf("correct() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, mag, want, 0)
}

func TestFormantEnvelopeTracksSmoothSpectrum(t *testing.T) {
	s := mustNew(t, 1, FormantPreserved, 1, 1)
	mag := make([]float64, s.size/2+1)
	for k := range mag {
		mag[k] = math.Exp(-float64(k) / 300)
	}

	f := s.chans[0].formant
	if err := f.envelope(s.plan, mag); err != nil {
		t.Fatalf("envelope() error = %v", err)
	}

	for _, k := range []int{100, 300, 600} {
		if math.Abs(math.Log(f.env[k])-math.Log(mag[k])) > 0.1 {
			t.Fatalf("env[%d] = %v, want about %v", k, f.env[k], mag[k])
		}
	}
}
