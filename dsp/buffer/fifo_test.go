package buffer

import "testing"

func TestFIFOWriteRead(t *testing.T) {
	f := NewFIFO(4)
	f.Write([]float64{1, 2, 3})

	if f.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", f.Len())
	}

	dst := make([]float64, 2)
	if n := f.Read(dst); n != 2 || dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("Read() = %d %v, want 2 [1 2]", n, dst)
	}

	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
}

func TestFIFOWrapsAround(t *testing.T) {
	f := NewFIFO(4)
	f.Write([]float64{1, 2, 3})
	f.Discard(2)
	f.Write([]float64{4, 5, 6})

	if f.Cap() != 4 {
		t.Fatalf("Cap() = %d, want 4 (no growth needed)", f.Cap())
	}

	dst := make([]float64, 4)
	n := f.Read(dst)
	want := []float64{3, 4, 5, 6}
	if n != 4 {
		t.Fatalf("Read() = %d, want 4", n)
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFIFOGrowPreservesOrder(t *testing.T) {
	f := NewFIFO(2)
	f.Write([]float64{1, 2})
	f.Discard(1)
	f.Write([]float64{3, 4, 5, 6, 7})

	if f.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", f.Len())
	}

	dst := make([]float64, 6)
	f.Read(dst)
	for i, v := range dst {
		if v != float64(i+2) {
			t.Fatalf("dst[%d] = %v, want %v", i, v, float64(i+2))
		}
	}
}

func TestFIFOPeekZeroFillsPastEnd(t *testing.T) {
	f := NewFIFO(8)
	f.Write([]float64{1, 2, 3})

	dst := []float64{9, 9, 9, 9}
	n := f.Peek(dst, 1)
	if n != 2 {
		t.Fatalf("Peek() = %d, want 2", n)
	}
	want := []float64{2, 3, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
	if f.Len() != 3 {
		t.Fatalf("Peek consumed data: Len() = %d", f.Len())
	}
}

func TestFIFOWriteZerosAndReset(t *testing.T) {
	f := NewFIFO(2)
	f.Write([]float64{5})
	f.WriteZeros(3)

	dst := make([]float64, 4)
	f.Peek(dst, 0)
	if dst[0] != 5 || dst[1] != 0 || dst[3] != 0 {
		t.Fatalf("unexpected contents %v", dst)
	}

	if n := f.Discard(10); n != 4 {
		t.Fatalf("Discard() = %d, want 4", n)
	}

	f.Write([]float64{1})
	f.Reset()
	if f.Len() != 0 {
		t.Fatalf("Len() = %d after Reset", f.Len())
	}
}

func TestFIFOTruncateKeepsHead(t *testing.T) {
	f := NewFIFO(4)
	f.Write([]float64{1, 2, 3})
	f.Discard(2)
	f.Write([]float64{4, 5, 6})

	f.Truncate(2)
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}

	f.Truncate(5)
	if f.Len() != 2 {
		t.Fatalf("Truncate must not extend: Len() = %d", f.Len())
	}

	dst := make([]float64, 2)
	f.Read(dst)
	if dst[0] != 3 || dst[1] != 4 {
		t.Fatalf("dst = %v, want [3 4]", dst)
	}

	f.Write([]float64{7})
	f.Read(dst[:1])
	if dst[0] != 7 {
		t.Fatalf("write after truncate read %v, want 7", dst[0])
	}
}
