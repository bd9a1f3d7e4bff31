package utctime

import "time"

// Clock provides the current moment. Implementations must return UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock and reports it in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return Now() }

// FixedClock always returns the same moment, converted to UTC.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At.UTC() }
