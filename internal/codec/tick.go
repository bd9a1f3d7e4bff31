package codec

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/timestamp"
	"github.com/skobkin/utcstamp/internal/utctime"
)

// DefaultTickResolution stores timestamps with microsecond precision.
const DefaultTickResolution = time.Microsecond

// TickCodec stores a timestamp as an int64 number of ticks since 1970-01-01T00:00:00Z.
//
// Conversion uses integer arithmetic only. Sub-tick precision is rounded half away
// from zero, the same policy as time.Duration.Round. An instant in the last second
// before utctime.Max that would round past it is clamped to the last tick of that
// second. Instants outside [utctime.Min, utctime.Max] and tick counts that do not
// fit into int64 fail with *RangeError.
type TickCodec struct {
	resolution time.Duration
	perSecond  int64
}

// NewTickCodec returns a codec with the given tick size. It must be positive,
// at most one second and divide one second evenly.
func NewTickCodec(resolution time.Duration) (*TickCodec, error) {
	if resolution <= 0 || resolution > time.Second || time.Second%resolution != 0 {
		return nil, fmt.Errorf("tick resolution %s must evenly divide one second", resolution)
	}

	return &TickCodec{
		resolution: resolution,
		perSecond:  int64(time.Second / resolution),
	}, nil
}

func (c *TickCodec) Name() string {
	return NameTick
}

func (c *TickCodec) Resolution() time.Duration {
	return c.resolution
}

func (c *TickCodec) Bind(v timestamp.Value) (driver.Value, error) {
	if v.IsAbsent() {
		return nil, nil
	}

	ticks, err := c.Ticks(v.UTC())
	if err != nil {
		return nil, err
	}

	return ticks, nil
}

func (c *TickCodec) Extract(src any) (timestamp.Value, error) {
	var ticks int64
	switch v := src.(type) {
	case nil:
		return timestamp.Absent(), nil
	case int64:
		ticks = v
	case int:
		ticks = int64(v)
	case int32:
		ticks = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return timestamp.Value{}, &RangeError{Op: "decode", Value: strconv.FormatUint(v, 10)}
		}
		ticks = int64(v)
	case string:
		return c.extractDecimal(v)
	case []byte:
		return c.extractDecimal(string(v))
	default:
		return timestamp.Value{}, unsupported(NameTick, src)
	}

	t, err := c.FromTicks(ticks)
	if err != nil {
		return timestamp.Value{}, err
	}

	return timestamp.Aware(t), nil
}

// Ticks converts t into a tick count. t is converted to UTC first.
func (c *TickCodec) Ticks(t time.Time) (int64, error) {
	t = t.UTC()
	if !utctime.InRange(t) {
		return 0, &RangeError{Op: "encode", Value: t.Format(time.RFC3339Nano)}
	}

	sec := t.Unix()
	res := int64(c.resolution)
	nsec := int64(t.Nanosecond())
	frac, rem := nsec/res, nsec%res
	// The sub-second part is always positive, so for instants before the epoch
	// a remainder of exactly half a tick must round towards negative infinity.
	if 2*rem > res || (2*rem == res && sec >= 0) {
		frac++
	}
	if frac == c.perSecond && sec == utctime.Max().Unix() {
		frac--
	}

	ticks := sec * c.perSecond
	if ticks/c.perSecond != sec || (ticks > 0 && ticks > math.MaxInt64-frac) {
		return 0, &RangeError{Op: "encode", Value: t.Format(time.RFC3339Nano)}
	}

	return ticks + frac, nil
}

// FromTicks converts a tick count into a UTC timestamp.
func (c *TickCodec) FromTicks(ticks int64) (time.Time, error) {
	sec, rem := ticks/c.perSecond, ticks%c.perSecond
	if rem < 0 {
		sec--
		rem += c.perSecond
	}
	if sec < utctime.Min().Unix() || sec > utctime.Max().Unix() {
		return time.Time{}, &RangeError{Op: "decode", Value: strconv.FormatInt(ticks, 10)}
	}

	return time.Unix(sec, rem*int64(c.resolution)).UTC(), nil
}

func (c *TickCodec) extractDecimal(raw string) (timestamp.Value, error) {
	ticks, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return timestamp.Value{}, &ParseError{Input: raw, Err: err}
	}
	t, err := c.FromTicks(ticks)
	if err != nil {
		return timestamp.Value{}, err
	}

	return timestamp.Aware(t), nil
}
