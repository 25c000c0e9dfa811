package stretcher

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/internal/onset"
)

// Flags is the packed option word of a Stretcher. Each option family
// occupies its own bit field; the zero value of every field is the default.
type Flags uint32

const (
	ProcessOffline  Flags = 0
	ProcessRealTime Flags = 1 << 0

	TransientsCrisp  Flags = 0
	TransientsMixed  Flags = 1 << 8
	TransientsSmooth Flags = 2 << 8

	DetectorCompound   Flags = 0
	DetectorPercussive Flags = 1 << 10
	DetectorSoft       Flags = 2 << 10

	PhaseLaminar     Flags = 0
	PhaseIndependent Flags = 1 << 13

	WindowStandard Flags = 0
	WindowShort    Flags = 1 << 20
	WindowLong     Flags = 2 << 20

	FormantShifted   Flags = 0
	FormantPreserved Flags = 1 << 24

	PitchHighSpeed       Flags = 0
	PitchHighQuality     Flags = 1 << 25
	PitchHighConsistency Flags = 2 << 25

	ChannelsApart    Flags = 0
	ChannelsTogether Flags = 1 << 28
)

// Field masks.
const (
	ProcessMask    Flags = 1 << 0
	TransientsMask Flags = 3 << 8
	DetectorMask   Flags = 3 << 10
	PhaseMask      Flags = 1 << 13
	WindowMask     Flags = 3 << 20
	FormantMask    Flags = 1 << 24
	PitchMask      Flags = 3 << 25
	ChannelsMask   Flags = 1 << 28
)

// With returns f with the field selected by mask replaced by value.
func (f Flags) With(mask, value Flags) Flags {
	return f&^mask | value&mask
}

// Field returns the bits of f selected by mask.
func (f Flags) Field(mask Flags) Flags {
	return f & mask
}

// Validate reports an error when a field holds a value outside its
// enumeration.
func (f Flags) Validate() error {
	switch {
	case f.Field(TransientsMask) > TransientsSmooth:
		return fmt.Errorf("%w: transients field %#x", ErrInvalidFlags, uint32(f.Field(TransientsMask)))
	case f.Field(DetectorMask) > DetectorSoft:
		return fmt.Errorf("%w: detector field %#x", ErrInvalidFlags, uint32(f.Field(DetectorMask)))
	case f.Field(WindowMask) > WindowLong:
		return fmt.Errorf("%w: window field %#x", ErrInvalidFlags, uint32(f.Field(WindowMask)))
	case f.Field(PitchMask) > PitchHighConsistency:
		return fmt.Errorf("%w: pitch field %#x", ErrInvalidFlags, uint32(f.Field(PitchMask)))
	}

	known := ProcessMask | TransientsMask | DetectorMask | PhaseMask |
		WindowMask | FormantMask | PitchMask | ChannelsMask
	if f&^known != 0 {
		return fmt.Errorf("%w: unknown bits %#x", ErrInvalidFlags, uint32(f&^known))
	}

	return nil
}

func (f Flags) detectorKind() onset.Kind {
	switch f.Field(DetectorMask) {
	case DetectorPercussive:
		return onset.Percussive
	case DetectorSoft:
		return onset.Soft
	default:
		return onset.Compound
	}
}
