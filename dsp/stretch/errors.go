package stretch

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-stretch/internal/stretcher"
)

var (
	// ErrInvalidParameter indicates a configuration value outside its domain.
	ErrInvalidParameter = errors.New("stretch: invalid parameter")
	// ErrChannelLengthMismatch indicates channel buffers of unequal length.
	ErrChannelLengthMismatch = errors.New("stretch: channel buffers differ in length")
	// ErrChannelCountMismatch indicates a buffer set with the wrong number of
	// channels.
	ErrChannelCountMismatch = errors.New("stretch: channel count mismatch")
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("stretch: engine closed")
	// ErrRealTimeStudy is returned by Study on a real-time Engine.
	ErrRealTimeStudy = stretcher.ErrRealTimeStudy
	// ErrStudyAfterProcess is returned by Study once Process has been called.
	ErrStudyAfterProcess = stretcher.ErrStudyAfterProcess
)

// ParameterError reports the offending parameter and value.
type ParameterError struct {
	Name  string
	Value any
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("stretch: invalid parameter %s: %v", e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// ChannelLengthError reports the first channel whose length differs from
// channel 0.
type ChannelLengthError struct {
	Op      string
	Channel int
	Len     int
	Want    int
}

func (e *ChannelLengthError) Error() string {
	return fmt.Sprintf("stretch: %s: channel %d has %d frames, want %d",
		e.Op, e.Channel, e.Len, e.Want)
}

func (e *ChannelLengthError) Unwrap() error {
	return ErrChannelLengthMismatch
}

// ChannelCountError reports a buffer set whose channel count differs from
// the Engine's.
type ChannelCountError struct {
	Op   string
	Got  int
	Want int
}

func (e *ChannelCountError) Error() string {
	return fmt.Sprintf("stretch: %s: got %d channels, want %d", e.Op, e.Got, e.Want)
}

func (e *ChannelCountError) Unwrap() error {
	return ErrChannelCountMismatch
}

func validateRatio(name string, v float64) error {
	if !isFinitePositive(v) {
		return &ParameterError{Name: name, Value: v}
	}

	return nil
}
