// Package stretch changes the duration and pitch of multi-channel audio
// streams.
//
// An Engine accepts audio in two passes. The optional study pass (offline
// mode only) sees the whole input first so that transients can be located
// and kept sharp; the process pass then produces output that is pulled with
// Available and Retrieve:
//
//	e, _ := stretch.New(stretch.DefaultConfig(44100, 2))
//	defer e.Close()
//	for each block {
//		e.Process(block, last)
//		for n, ok := e.Available(); ok && n > 0; n, ok = e.Available() {
//			out, _ := e.Retrieve(n)
//			...
//		}
//	}
//
// Every buffer set passed in must hold one equal-length slice per configured
// channel. Invalid input is rejected with a typed error before any state
// changes. Once the final block has been processed and all output retrieved,
// Available reports ok == false. For a constant time ratio the total output
// is round(inputFrames * timeRatio) frames.
//
// Engines are not safe for concurrent use; distinct Engines are independent.
package stretch
