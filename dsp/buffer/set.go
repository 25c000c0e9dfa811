package buffer

// Set is an ordered collection of per-channel sample buffers. Index i holds
// channel i. A Set borrowed by a processing call is read-only for the call's
// duration; a Set returned by a retrieval call belongs to the caller.
//
// Set is a plain slice type, so a [][]float64 literal can be passed wherever
// a Set is expected.
type Set [][]float64

// NewSet allocates channels zero-filled buffers of frames samples each.
func NewSet(channels, frames int) Set {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}
	s := make(Set, channels)
	for i := range s {
		s[i] = make([]float64, frames)
	}
	return s
}

// Channels returns the number of channel buffers.
func (s Set) Channels() int {
	return len(s)
}

// Frames returns the length of the shortest channel, or 0 for an empty set.
func (s Set) Frames() int {
	if len(s) == 0 {
		return 0
	}
	n := len(s[0])
	for _, ch := range s[1:] {
		n = min(n, len(ch))
	}
	return n
}

// UniformLen reports the common channel length. An empty set has length 0.
// When the lengths differ it returns the index of the first channel whose
// length disagrees with channel 0, and ok is false.
func (s Set) UniformLen() (n, mismatch int, ok bool) {
	if len(s) == 0 {
		return 0, -1, true
	}
	n = len(s[0])
	for i, ch := range s[1:] {
		if len(ch) != n {
			return n, i + 1, false
		}
	}
	return n, -1, true
}

// Truncate shortens every channel to at most n samples in place and returns
// the set. Capacity beyond n stays allocated but is no longer visible.
func (s Set) Truncate(n int) Set {
	if n < 0 {
		n = 0
	}
	for i, ch := range s {
		if len(ch) > n {
			s[i] = ch[:n]
		}
	}
	return s
}

// Gather borrows the sample slices of bufs into a pooled Set without copying
// any samples. The returned release function hands the pointer array back to
// the pool; the Set must not be used after release is called. Nil entries
// gather as empty channels.
func Gather(bufs []*Buffer) (Set, func()) {
	hp := setHeaders.Get().(*Set)
	s := (*hp)[:0]
	for _, b := range bufs {
		s = append(s, b.Samples())
	}
	return s, func() {
		clear(s)
		*hp = s[:0]
		setHeaders.Put(hp)
	}
}
