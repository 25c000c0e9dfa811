package interp

// Kernel selects how a value between two samples is estimated.
type Kernel int

const (
	// Linear blends the two neighbouring samples.
	Linear Kernel = iota
	// Cubic fits a 4-point Hermite spline through the two neighbours and one
	// sample on each side.
	Cubic
)

// Lead returns how many samples before the interpolation interval the kernel
// reads.
func (k Kernel) Lead() int {
	if k == Cubic {
		return 1
	}

	return 0
}

// Taps returns how many consecutive samples the kernel reads.
func (k Kernel) Taps() int {
	if k == Cubic {
		return 4
	}

	return 2
}

// At estimates the signal at frac in [0, 1) past x[k.Lead()]. x must hold at
// least k.Taps() samples.
func (k Kernel) At(x []float64, frac float64) float64 {
	if k == Cubic {
		return Hermite4(frac, x[0], x[1], x[2], x[3])
	}

	return x[0] + frac*(x[1]-x[0])
}

// Hermite4 interpolates from x0 to x1 at t using the outer points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)

	return ((c3*t+c2)*t+c1)*t + x0
}
