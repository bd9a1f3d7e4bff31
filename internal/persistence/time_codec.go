package persistence

import (
	"fmt"
	"time"

	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/timestamp"
)

// Codecs selects how time columns are stored. Integer columns use Tick,
// text columns use Text. Switching a column between them requires a data migration.
type Codecs struct {
	Tick *codec.TickCodec
	Text *codec.TextCodec
}

func NewCodecs(tickResolution time.Duration) (Codecs, error) {
	tick, err := codec.NewTickCodec(tickResolution)
	if err != nil {
		return Codecs{}, fmt.Errorf("create tick codec: %w", err)
	}

	return Codecs{Tick: tick, Text: codec.NewTextCodec()}, nil
}

func DefaultCodecs() Codecs {
	c, err := NewCodecs(codec.DefaultTickResolution)
	if err != nil {
		panic(err)
	}

	return c
}

// optionalTime maps the zero time to an absent value.
func optionalTime(t time.Time) timestamp.Value {
	if t.IsZero() {
		return timestamp.Absent()
	}

	return timestamp.Aware(t)
}
