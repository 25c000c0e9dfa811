package core_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
)

func ExampleDBToLinear() {
	fmt.Printf("%.4f\n", core.DBToLinear(3))
	// Output:
	// 1.4125
}

func ExampleWrapPhase() {
	fmt.Printf("%.4f\n", core.WrapPhase(3*math.Pi/2))
	// Output:
	// -1.5708
}

func ExampleNearestPowerOfTwo() {
	fmt.Println(core.NearestPowerOfTwo(88200.0 / 48000))
	// Output:
	// 2
}
