package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
)

func ExampleSet() {
	s := buffer.NewSet(2, 4)
	copy(s[0], []float64{1, 2, 3, 4})

	n, _, ok := s.UniformLen()
	fmt.Println(s.Channels(), n, ok)

	s.Truncate(2)
	fmt.Println(s)

	// Output:
	// 2 4 true
	// [[1 2] [0 0]]
}

func ExampleFIFO() {
	f := buffer.NewFIFO(4)
	f.Write([]float64{1, 2, 3})

	out := make([]float64, 2)
	n := f.Read(out)
	fmt.Println(n, out, f.Len())

	// Output:
	// 2 [1 2] 1
}
