package onset

import "testing"

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDetectorFirstFrameIsZero(t *testing.T) {
	for _, kind := range []Kind{Compound, Percussive, Soft} {
		d := NewDetector(kind, 8)
		if v := d.Process(flat(8, 1)); v != 0 {
			t.Fatalf("%v: first frame = %v, want 0", kind, v)
		}
	}
}

func TestDetectorSteadySpectrumIsQuiet(t *testing.T) {
	for _, kind := range []Kind{Compound, Percussive, Soft} {
		d := NewDetector(kind, 16)
		d.Process(flat(16, 0.5))
		if v := d.Process(flat(16, 0.5)); v != 0 {
			t.Fatalf("%v: steady frame = %v, want 0", kind, v)
		}
	}
}

func TestDetectorRespondsToBroadbandRise(t *testing.T) {
	tests := []struct {
		kind Kind
		min  float64
	}{
		{kind: Percussive, min: 0.99},
		{kind: Soft, min: 0.8},
		{kind: Compound, min: 0.99},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			d := NewDetector(tt.kind, 32)
			d.Process(flat(32, 0.01))
			if v := d.Process(flat(32, 1)); v < tt.min {
				t.Fatalf("rise = %v, want >= %v", v, tt.min)
			}
		})
	}
}

func TestPercussiveIgnoresSmallRise(t *testing.T) {
	d := NewDetector(Percussive, 8)
	d.Process(flat(8, 1))
	// 1 dB is below the 3 dB rise criterion.
	if v := d.Process(flat(8, 1.12)); v != 0 {
		t.Fatalf("small rise = %v, want 0", v)
	}
}

func TestDetectorReset(t *testing.T) {
	d := NewDetector(Percussive, 4)
	d.Process(flat(4, 0))
	d.Reset()
	if v := d.Process(flat(4, 1)); v != 0 {
		t.Fatalf("after reset = %v, want 0", v)
	}
}

func TestPickerFlagsIsolatedSpikes(t *testing.T) {
	p := NewPicker(Threshold(Percussive), 4)

	var onsets []int
	for i := range 40 {
		v := 0.02
		if i == 10 || i == 25 {
			v = 0.9
		}
		if p.Next(v) {
			onsets = append(onsets, i)
		}
	}

	if len(onsets) != 2 || onsets[0] != 10 || onsets[1] != 25 {
		t.Fatalf("onsets = %v, want [10 25]", onsets)
	}
}

func TestPickerEnforcesMinimumGap(t *testing.T) {
	p := NewPicker(0.3, 5)

	count := 0
	for i := range 8 {
		v := 0.0
		if i%2 == 0 {
			v = 0.9
		}
		if p.Next(v) {
			count++
		}
	}

	if count != 2 {
		t.Fatalf("onsets = %d, want 2 (frames 0 and 6)", count)
	}
}

func TestPickerAdaptsToBusyCurve(t *testing.T) {
	p := NewPicker(0.3, 1)

	// A sustained high level raises the median; a small bump on top of it is
	// not an onset.
	for range 16 {
		p.Next(0.6)
	}
	if p.Next(0.65) {
		t.Fatal("bump above busy background flagged as onset")
	}
	if !p.Next(0.95) {
		t.Fatal("clear jump above background not flagged")
	}
}

func TestPeakPick(t *testing.T) {
	curve := []float64{0, 0.1, 0.8, 0.3, 0, 0, 0.05, 0.9, 0.85, 0, 0.2, 0}
	got := PeakPick(curve, 0.3, 2)

	want := map[int]bool{2: true, 7: true}
	for i, v := range got {
		if v != want[i] {
			t.Fatalf("frame %d: onset=%v, want %v (all %v)", i, v, want[i], got)
		}
	}
}

func TestPeakPickGap(t *testing.T) {
	curve := []float64{0, 0.9, 0, 0.9, 0, 0, 0, 0.9}
	got := PeakPick(curve, 0.3, 4)

	if !got[1] || got[3] || !got[7] {
		t.Fatalf("unexpected picks %v", got)
	}
}
