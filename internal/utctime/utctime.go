// Package utctime is the single construction point for timestamps in the process.
//
// Go has no implicit "no zone" time value, but it does fall back to time.Local in
// several places (time.Now, time.Date(..., time.Local), drivers parsing zone-less
// columns). Application code builds timestamps through Date, FromFields and Now
// instead of the time package, so a missing location always means UTC.
package utctime

import (
	"fmt"
	"time"
)

var (
	minTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// Min returns the earliest timestamp accepted at the storage boundary.
func Min() time.Time { return minTime }

// Max returns the latest timestamp accepted at the storage boundary.
func Max() time.Time { return maxTime }

// ConstructionError reports a calendar component outside of its valid range.
type ConstructionError struct {
	Field string
	Value int
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct timestamp: %s %d out of range", e.Field, e.Value)
}

// Fields holds timestamp components by name. A nil Location means UTC.
type Fields struct {
	Year       int
	Month      time.Month
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Location   *time.Location
}

// Date builds a timestamp from positional components. A nil loc means UTC,
// any other location is kept as is.
func Date(year int, month time.Month, day, hour, minute, sec, nsec int, loc *time.Location) (time.Time, error) {
	return FromFields(Fields{
		Year:       year,
		Month:      month,
		Day:        day,
		Hour:       hour,
		Minute:     minute,
		Second:     sec,
		Nanosecond: nsec,
		Location:   loc,
	})
}

// FromFields builds a timestamp from named components. Unlike time.Date it rejects
// out-of-range components instead of normalizing them.
func FromFields(f Fields) (time.Time, error) {
	if err := f.validate(); err != nil {
		return time.Time{}, err
	}

	return time.Date(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, f.Nanosecond, locationOrUTC(f.Location)), nil
}

// MustDate is Date for constant components known to be valid.
func MustDate(year int, month time.Month, day, hour, minute, sec, nsec int, loc *time.Location) time.Time {
	t, err := Date(year, month, day, hour, minute, sec, nsec, loc)
	if err != nil {
		panic(err)
	}

	return t
}

// Now returns the current moment in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// NowIn returns the current moment in loc. A nil loc means UTC.
func NowIn(loc *time.Location) time.Time {
	return time.Now().In(locationOrUTC(loc))
}

// InRange reports whether t lies within [Min, Max].
func InRange(t time.Time) bool {
	return !t.Before(minTime) && !t.After(maxTime)
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}

	return loc
}

func (f Fields) validate() error {
	if f.Year < minTime.Year() || f.Year > maxTime.Year() {
		return &ConstructionError{Field: "year", Value: f.Year}
	}
	if f.Month < time.January || f.Month > time.December {
		return &ConstructionError{Field: "month", Value: int(f.Month)}
	}
	if f.Day < 1 || f.Day > daysIn(f.Year, f.Month) {
		return &ConstructionError{Field: "day", Value: f.Day}
	}
	if f.Hour < 0 || f.Hour > 23 {
		return &ConstructionError{Field: "hour", Value: f.Hour}
	}
	if f.Minute < 0 || f.Minute > 59 {
		return &ConstructionError{Field: "minute", Value: f.Minute}
	}
	if f.Second < 0 || f.Second > 59 {
		return &ConstructionError{Field: "second", Value: f.Second}
	}
	if f.Nanosecond < 0 || f.Nanosecond > 999999999 {
		return &ConstructionError{Field: "nanosecond", Value: f.Nanosecond}
	}

	return nil
}

// daysIn uses the proleptic Gregorian calendar, same as the time package.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
