package codec

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/timestamp"
	"github.com/skobkin/utcstamp/internal/utctime"
)

// TextLayout is the canonical rendering, e.g. 2024-01-15T12:00:00+00:00.
// Trailing zeros of the fraction are dropped, so precision is kept up to nanoseconds.
const TextLayout = "2006-01-02T15:04:05.999999999-07:00"

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	// Written by legacy writers without an offset. The wall clock is taken as UTC.
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		time.DateOnly,
	}
)

// TextCodec stores a timestamp as an ISO 8601 string with an explicit offset.
// Values are always rendered in UTC, which keeps stored strings sortable.
type TextCodec struct{}

func NewTextCodec() *TextCodec {
	return &TextCodec{}
}

func (c *TextCodec) Name() string {
	return NameText
}

func (c *TextCodec) Bind(v timestamp.Value) (driver.Value, error) {
	if v.IsAbsent() {
		return nil, nil
	}

	s, err := c.Format(v.UTC())
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (c *TextCodec) Extract(src any) (timestamp.Value, error) {
	var (
		t   time.Time
		err error
	)
	switch v := src.(type) {
	case nil:
		return timestamp.Absent(), nil
	case string:
		t, err = c.Parse(v)
	case []byte:
		t, err = c.Parse(string(v))
	case time.Time:
		// Some drivers parse date-like column types themselves.
		t, err = inRange("decode", v.UTC())
	default:
		return timestamp.Value{}, unsupported(NameText, src)
	}
	if err != nil {
		return timestamp.Value{}, err
	}

	return timestamp.Aware(t), nil
}

// Format renders t in UTC using TextLayout.
func (c *TextCodec) Format(t time.Time) (string, error) {
	t, err := inRange("encode", t.UTC())
	if err != nil {
		return "", err
	}

	return t.Format(TextLayout), nil
}

// Parse reads a timestamp with or without an offset and returns it in UTC.
// Text without an offset is taken as UTC wall clock time.
func (c *TextCodec) Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)

	var firstErr error
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return inRange("decode", t.UTC())
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return inRange("decode", t)
		}
	}

	return time.Time{}, &ParseError{Input: raw, Err: firstErr}
}

func inRange(op string, t time.Time) (time.Time, error) {
	if !utctime.InRange(t) {
		return time.Time{}, &RangeError{Op: op, Value: t.Format(time.RFC3339Nano)}
	}

	return t, nil
}
