// Package stretchcalc maps input positions to output positions for a stretch
// curve and distributes the output budget across analysis frames.
package stretchcalc

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KeyFrame pins input frame Source to output frame Target.
type KeyFrame struct {
	Source int
	Target int
}

// Normalize pairs from and to into key frames sorted by source. Pairs with a
// negative frame, a source at or beyond totalIn (when totalIn > 0), or a
// source or target that does not increase over the previous kept pair are
// dropped; the number dropped is returned. A (0, 0) pair is implied and
// removed if given.
func Normalize(from, to []int, totalIn int) (keys []KeyFrame, dropped int) {
	n := min(len(from), len(to))
	dropped = max(len(from), len(to)) - n

	pairs := make([]KeyFrame, 0, n)
	for i := range n {
		pairs = append(pairs, KeyFrame{Source: from[i], Target: to[i]})
	}
	slices.SortStableFunc(pairs, func(a, b KeyFrame) int {
		return a.Source - b.Source
	})

	last := KeyFrame{}
	for _, k := range pairs {
		switch {
		case k.Source == 0 && k.Target == 0:
			continue
		case k.Source < 0 || k.Target < 0:
		case totalIn > 0 && k.Source >= totalIn:
		case k.Source <= last.Source || k.Target <= last.Target:
		default:
			keys = append(keys, k)
			last = k
			continue
		}
		dropped++
	}

	return keys, dropped
}

// Curve is a piecewise-linear map from input to output positions. Between
// key frames the slope is fixed by the surrounding pair; past the last key
// frame it continues at Ratio.
type Curve struct {
	Keys  []KeyFrame
	Ratio float64
}

// Map returns the output position of input position x.
func (c Curve) Map(x float64) float64 {
	i := c.segment(x)

	var in0, out0 float64
	if i > 0 {
		in0, out0 = float64(c.Keys[i-1].Source), float64(c.Keys[i-1].Target)
	}

	if i == len(c.Keys) {
		return out0 + (x-in0)*c.Ratio
	}

	k := c.Keys[i]
	return out0 + (x-in0)*(float64(k.Target)-out0)/(float64(k.Source)-in0)
}

// RatioAt returns the local slope of the curve at input position x.
func (c Curve) RatioAt(x float64) float64 {
	i := c.segment(x)
	if i == len(c.Keys) {
		return c.Ratio
	}

	var in0, out0 float64
	if i > 0 {
		in0, out0 = float64(c.Keys[i-1].Source), float64(c.Keys[i-1].Target)
	}
	k := c.Keys[i]

	return (float64(k.Target) - out0) / (float64(k.Source) - in0)
}

// segment returns the index of the first key frame whose source lies after x.
func (c Curve) segment(x float64) int {
	return sort.Search(len(c.Keys), func(i int) bool {
		return float64(c.Keys[i].Source) > x
	})
}

// Increments returns the output advance for each of frames analysis frames
// spaced hop input samples apart, scaled by scale. Frame j advances from
// Map(j*hop) to Map((j+1)*hop), so the increments sum to the curve.
func Increments(c Curve, frames, hop int, scale float64) []float64 {
	out := make([]float64, frames)
	prev := c.Map(0)
	for j := range out {
		next := c.Map(float64((j + 1) * hop))
		out[j] = (next - prev) * scale
		prev = next
	}

	return out
}

// Distribute rewrites inc so that onset frames advance by exactly locked,
// keeping each transient at its original duration, while the remaining
// frames of the same key-frame segment share what is left of that segment's
// budget. Only the first limit frames are touched. A segment is left
// unchanged when locking would leave its other frames an advance below
// minInc. It returns the number of frames locked.
func Distribute(inc []float64, onsets []bool, c Curve, hop, limit int, locked, minInc float64) int {
	limit = min(limit, len(inc), len(onsets))
	total := 0

	start := 0
	for start < limit {
		seg := c.segment(float64(start * hop))
		end := start + 1
		for end < limit && c.segment(float64(end*hop)) == seg {
			end++
		}

		total += distributeRegion(inc[start:end], onsets[start:end], locked, minInc)
		start = end
	}

	return total
}

func distributeRegion(inc []float64, onsets []bool, locked, minInc float64) int {
	count := 0
	for _, on := range onsets {
		if on {
			count++
		}
	}
	free := len(inc) - count
	if count == 0 || free == 0 {
		return 0
	}

	budget := floats.Sum(inc) - float64(count)*locked
	share := budget / float64(free)
	if share < minInc {
		return 0
	}

	for i, on := range onsets {
		if on {
			inc[i] = locked
		} else {
			inc[i] = share
		}
	}

	return count
}
