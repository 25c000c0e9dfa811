package buffer

import "testing"

func TestNewSet(t *testing.T) {
	s := NewSet(3, 5)
	if s.Channels() != 3 {
		t.Fatalf("Channels() = %d, want 3", s.Channels())
	}
	if s.Frames() != 5 {
		t.Fatalf("Frames() = %d, want 5", s.Frames())
	}

	if got := NewSet(-1, -1); got.Channels() != 0 || got.Frames() != 0 {
		t.Fatalf("negative sizes: channels=%d frames=%d", got.Channels(), got.Frames())
	}
}

func TestSetUniformLen(t *testing.T) {
	tests := []struct {
		name         string
		set          Set
		wantLen      int
		wantMismatch int
		wantOK       bool
	}{
		{name: "empty", set: Set{}, wantLen: 0, wantMismatch: -1, wantOK: true},
		{name: "nil", set: nil, wantLen: 0, wantMismatch: -1, wantOK: true},
		{name: "mono", set: Set{make([]float64, 7)}, wantLen: 7, wantMismatch: -1, wantOK: true},
		{name: "stereo equal", set: NewSet(2, 16), wantLen: 16, wantMismatch: -1, wantOK: true},
		{name: "zero length channels", set: NewSet(4, 0), wantLen: 0, wantMismatch: -1, wantOK: true},
		{
			name:         "third channel short",
			set:          Set{make([]float64, 8), make([]float64, 8), make([]float64, 3)},
			wantLen:      8,
			wantMismatch: 2,
			wantOK:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, mismatch, ok := tt.set.UniformLen()
			if n != tt.wantLen || mismatch != tt.wantMismatch || ok != tt.wantOK {
				t.Fatalf("UniformLen() = (%d, %d, %v), want (%d, %d, %v)",
					n, mismatch, ok, tt.wantLen, tt.wantMismatch, tt.wantOK)
			}
		})
	}
}

func TestSetFramesIsShortestChannel(t *testing.T) {
	s := Set{make([]float64, 9), make([]float64, 4)}
	if s.Frames() != 4 {
		t.Fatalf("Frames() = %d, want 4", s.Frames())
	}
}

func TestSetTruncateKeepsData(t *testing.T) {
	s := Set{{1, 2, 3, 4}, {5, 6, 7, 8}}
	s.Truncate(2)

	if s.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", s.Frames())
	}
	if s[0][1] != 2 || s[1][1] != 6 {
		t.Fatalf("unexpected data after truncate: %v", s)
	}

	s.Truncate(10)
	if s.Frames() != 2 {
		t.Fatalf("Truncate must not extend: Frames() = %d", s.Frames())
	}
}

func TestGatherBorrowsWithoutCopy(t *testing.T) {
	left := FromSlice([]float64{1, 2, 3})
	right := FromSlice([]float64{4, 5, 6})

	s, release := Gather([]*Buffer{left, right, nil})
	defer release()

	if s.Channels() != 3 {
		t.Fatalf("Channels() = %d, want 3", s.Channels())
	}
	if len(s[2]) != 0 {
		t.Fatalf("nil buffer gathered as %v, want empty", s[2])
	}

	s[0][0] = 42
	if left.Samples()[0] != 42 {
		t.Fatal("Gather should share channel memory")
	}
}

func TestGatherReleaseRecyclesHeader(t *testing.T) {
	bufs := []*Buffer{New(2), New(2)}

	for range 4 {
		s, release := Gather(bufs)
		if s.Channels() != 2 {
			t.Fatalf("Channels() = %d, want 2", s.Channels())
		}
		release()
	}
}
