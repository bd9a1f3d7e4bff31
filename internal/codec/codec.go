// Package codec converts timestamps to and from storage scalars.
//
// Two strategies are provided: TickCodec stores a signed integer count of ticks
// since the Unix epoch, TextCodec stores an RFC 3339 string with an explicit offset.
// Both always hand back UTC values, so callers never see a value that would be
// read as local time. Columns written with one codec cannot be read with the other.
package codec

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/timestamp"
)

const (
	NameTick = "tick"
	NameText = "text"
)

// Codec is a paired encode/decode transformation between a timestamp and a column value.
// Implementations are stateless and safe for concurrent use.
type Codec interface {
	Name() string
	// Bind converts v into a driver value. Absent values bind to nil.
	Bind(v timestamp.Value) (driver.Value, error)
	// Extract converts a driver value into a UTC timestamp. nil extracts to an absent value.
	Extract(src any) (timestamp.Value, error)
}

// ForName returns the codec registered under name. resolution is used by the
// tick codec only; zero selects DefaultTickResolution.
func ForName(name string, resolution time.Duration) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameTick:
		if resolution == 0 {
			resolution = DefaultTickResolution
		}
		c, err := NewTickCodec(resolution)
		if err != nil {
			return nil, err
		}
		return c, nil
	case NameText:
		return NewTextCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

func Names() []string {
	names := []string{NameTick, NameText}
	sort.Strings(names)

	return names
}
