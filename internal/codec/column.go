package codec

import (
	"database/sql"
	"database/sql/driver"

	"github.com/skobkin/utcstamp/internal/timestamp"
)

type valuer struct {
	codec Codec
	value timestamp.Value
}

func (v valuer) Value() (driver.Value, error) {
	return v.codec.Bind(v.value)
}

type scanner struct {
	codec Codec
	dst   *timestamp.Value
}

func (s scanner) Scan(src any) error {
	v, err := s.codec.Extract(src)
	if err != nil {
		return err
	}
	*s.dst = v

	return nil
}

// Bind returns a query argument that stores v through c.
func Bind(c Codec, v timestamp.Value) driver.Valuer {
	return valuer{codec: c, value: v}
}

// Into returns a scan destination that decodes a column through c into dst.
func Into(c Codec, dst *timestamp.Value) sql.Scanner {
	return scanner{codec: c, dst: dst}
}
