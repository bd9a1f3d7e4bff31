package codec

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned when a driver hands over a value of a Go type the codec cannot read.
var ErrUnsupportedType = errors.New("unsupported column value type")

// RangeError reports a timestamp or tick count that cannot be represented on the other side.
type RangeError struct {
	Op    string
	Value string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s timestamp: %s out of range", e.Op, e.Value)
}

// ParseError reports text that is not a calendar timestamp.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func unsupported(codec string, src any) error {
	return fmt.Errorf("%s codec: %w: %T", codec, ErrUnsupportedType, src)
}
