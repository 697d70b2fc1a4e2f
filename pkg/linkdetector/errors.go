package linkdetector

import (
	"errors"
	"fmt"
)

// Error kinds returned by this package.
var (
	// ErrInvalidArgument is returned when a required input is absent.
	ErrInvalidArgument = errors.New("linkdetector: invalid argument")

	// ErrOutOfRange is returned when a fragment range does not fit its input.
	// It signals a bug in span computation, never a property of the text.
	ErrOutOfRange = errors.New("linkdetector: index out of range")
)

// RangeError describes a rejected [start, end) range.
// It matches ErrOutOfRange with errors.Is.
type RangeError struct {
	Reason string
	Start  int
	End    int
	Length int
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("linkdetector: %s: start %d, end %d, length %d",
		e.Reason, e.Start, e.End, e.Length)
}

// Is reports whether target is ErrOutOfRange.
func (*RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
