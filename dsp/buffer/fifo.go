package buffer

// FIFO is a growable circular sample queue. Writes append at the tail, reads
// consume from the head. Capacity doubles when a write would overflow, so
// callers never lose samples; use Grow to pre-size for a known block size.
type FIFO struct {
	buffer  []float64
	readPos int
	length  int
}

// NewFIFO returns an empty FIFO with room for capacity samples.
func NewFIFO(capacity int) *FIFO {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO{buffer: make([]float64, capacity)}
}

// Len returns the number of queued samples.
func (f *FIFO) Len() int {
	return f.length
}

// Cap returns the current ring size.
func (f *FIFO) Cap() int {
	return len(f.buffer)
}

// Grow ensures room for n more samples without reallocating on write.
func (f *FIFO) Grow(n int) {
	need := f.length + n
	if need <= len(f.buffer) {
		return
	}
	size := len(f.buffer)
	for size < need {
		size *= 2
	}
	grown := make([]float64, size)
	f.Peek(grown[:f.length], 0)
	f.buffer = grown
	f.readPos = 0
}

// Write appends src to the tail.
func (f *FIFO) Write(src []float64) {
	if len(src) == 0 {
		return
	}
	f.Grow(len(src))
	size := len(f.buffer)
	writePos := (f.readPos + f.length) % size
	n := copy(f.buffer[writePos:], src)
	copy(f.buffer, src[n:])
	f.length += len(src)
}

// WriteZeros appends n zero samples.
func (f *FIFO) WriteZeros(n int) {
	if n <= 0 {
		return
	}
	f.Grow(n)
	size := len(f.buffer)
	writePos := (f.readPos + f.length) % size
	for i := range n {
		f.buffer[(writePos+i)%size] = 0
	}
	f.length += n
}

// Peek copies queued samples starting offset samples after the head into dst
// without consuming them. Positions past the queued data are zero-filled.
// It returns the number of queued samples copied.
func (f *FIFO) Peek(dst []float64, offset int) int {
	if offset < 0 {
		offset = 0
	}
	n := max(0, min(len(dst), f.length-offset))
	size := len(f.buffer)
	start := (f.readPos + offset) % size
	first := min(n, size-start)
	copy(dst[:first], f.buffer[start:start+first])
	copy(dst[first:n], f.buffer[:n-first])
	clear(dst[n:])
	return n
}

// Read consumes up to len(dst) samples into dst and returns the count.
func (f *FIFO) Read(dst []float64) int {
	n := min(len(dst), f.length)
	f.Peek(dst[:n], 0)
	f.Discard(n)
	return n
}

// Discard drops up to n samples from the head and returns the count dropped.
func (f *FIFO) Discard(n int) int {
	n = max(0, min(n, f.length))
	f.readPos = (f.readPos + n) % len(f.buffer)
	f.length -= n
	return n
}

// Truncate drops queued samples beyond the first n, keeping the head.
func (f *FIFO) Truncate(n int) {
	if n < f.length {
		f.length = max(n, 0)
	}
}

// Reset empties the queue. Capacity is retained.
func (f *FIFO) Reset() {
	f.readPos = 0
	f.length = 0
}
