package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	b := New(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	b := New(-1)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for negative input", b.Len())
	}
}

func TestNilBufferIsEmpty(t *testing.T) {
	var b *Buffer
	if b.Len() != 0 || b.Samples() != nil {
		t.Fatal("nil Buffer should report no samples")
	}
}

func TestFromSliceSharesMemory(t *testing.T) {
	s := []float64{1, 2, 3}
	b := FromSlice(s)
	b.Samples()[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSlice should share underlying memory")
	}
}

func TestResizeGrow(t *testing.T) {
	b := New(2)
	b.Samples()[0] = 1
	b.Samples()[1] = 2
	b.Resize(4)
	if b.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", b.Len())
	}
	if b.Samples()[0] != 1 || b.Samples()[1] != 2 {
		t.Fatal("Resize did not preserve existing data")
	}
	if b.Samples()[2] != 0 || b.Samples()[3] != 0 {
		t.Fatal("Resize did not zero new elements")
	}
}

func TestResizeShrink(t *testing.T) {
	b := New(8)
	b.Samples()[0] = 5
	b.Resize(2)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	if b.Samples()[0] != 5 {
		t.Fatal("Resize shrink did not preserve data")
	}
}

func TestResizeReuseClearsStaleData(t *testing.T) {
	b := FromSlice([]float64{1, 2, 3, 4})
	b.Resize(2)
	b.Resize(4)
	// Elements 2 and 3 should be zeroed even though capacity was reused.
	if b.Samples()[2] != 0 || b.Samples()[3] != 0 {
		t.Fatalf("stale data visible after Resize: %v", b.Samples())
	}
}

func TestEnsureLen(t *testing.T) {
	buf := make([]float64, 4, 8)
	buf[0] = 7

	out := EnsureLen(buf, 6)
	if len(out) != 6 || cap(out) != cap(buf) {
		t.Fatalf("len/cap = %d/%d, want 6/%d", len(out), cap(out), cap(buf))
	}

	out = EnsureLen(out, 16)
	if len(out) != 16 || out[0] != 7 {
		t.Fatalf("grown slice lost data: len=%d out[0]=%v", len(out), out[0])
	}

	if got := EnsureLen(out, -3); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
