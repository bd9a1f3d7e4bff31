package timestamp

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
)

type kind uint8

const (
	kindAbsent kind = iota
	kindAware
	kindNaive
)

// Value is a timestamp crossing the storage boundary. It is either absent (SQL NULL),
// zone-aware (an instant with a location) or zone-naive (wall clock components only).
// The zero Value is absent.
type Value struct {
	kind  kind
	aware time.Time
	naive civil.DateTime
}

func Absent() Value {
	return Value{}
}

func Aware(t time.Time) Value {
	return Value{kind: kindAware, aware: t}
}

// Naive wraps wall clock components that carry no zone information.
// They are interpreted as UTC by every normalization step, never as local time.
func Naive(dt civil.DateTime) Value {
	return Value{kind: kindNaive, naive: dt}
}

func FromNullTime(nt sql.NullTime) Value {
	if !nt.Valid {
		return Absent()
	}
	return Aware(nt.Time)
}

func (v Value) IsAbsent() bool {
	return v.kind == kindAbsent
}

func (v Value) IsNaive() bool {
	return v.kind == kindNaive
}

// Civil returns the wall clock components of the value as they were given.
func (v Value) Civil() civil.DateTime {
	switch v.kind {
	case kindAware:
		return civil.DateTimeOf(v.aware)
	case kindNaive:
		return v.naive
	default:
		return civil.DateTime{}
	}
}

// UTC returns the normalized instant. Aware values are converted to UTC,
// naive values get UTC assigned to their wall clock. Absent values yield the zero time.
func (v Value) UTC() time.Time {
	switch v.kind {
	case kindAware:
		return v.aware.UTC()
	case kindNaive:
		return v.naive.In(time.UTC)
	default:
		return time.Time{}
	}
}

// Normalize returns the same timestamp as an aware UTC value.
func (v Value) Normalize() Value {
	if v.kind == kindAbsent {
		return v
	}
	return Aware(v.UTC())
}

// NullTime converts the value into a sql.NullTime in UTC.
func (v Value) NullTime() sql.NullTime {
	if v.kind == kindAbsent {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

// Equal reports whether both values are absent or denote the same UTC instant.
func (v Value) Equal(o Value) bool {
	if v.IsAbsent() || o.IsAbsent() {
		return v.IsAbsent() == o.IsAbsent()
	}
	return v.UTC().Equal(o.UTC())
}

func (v Value) String() string {
	switch v.kind {
	case kindAware:
		return v.aware.Format(time.RFC3339Nano)
	case kindNaive:
		return v.naive.String()
	default:
		return "<absent>"
	}
}
