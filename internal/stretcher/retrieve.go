package stretcher

// Available returns the number of output frames ready for Retrieve, or -1
// once the final block has been processed and every frame retrieved.
func (s *Stretcher) Available() int {
	if len(s.chans) == 0 {
		if s.stream.finished {
			return -1
		}
		return 0
	}

	n := s.chans[0].out.Len()
	for _, c := range s.chans[1:] {
		n = min(n, c.out.Len())
	}

	if n == 0 && s.stream.finished {
		return -1
	}

	return n
}

// Retrieve copies up to n ready output frames into out, one slice per
// channel, and returns the number copied.
func (s *Stretcher) Retrieve(out [][]float64, n int) int {
	n = min(n, s.Available())
	if n <= 0 {
		return 0
	}

	for i, c := range s.chans {
		c.out.Read(out[i][:n])
	}

	if s.midSide() {
		mid, side := out[0][:n], out[1][:n]
		for i := range n {
			m, sd := mid[i], side[i]
			mid[i] = m + sd
			side[i] = m - sd
		}
	}

	s.stream.retrieved += n

	return n
}
