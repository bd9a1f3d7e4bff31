package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register sqlite driver
)

// busyTimeoutMillis lets concurrent writers wait for the lock instead of failing
// with SQLITE_BUSY. WriterQueue retries whatever still fails after that.
const busyTimeoutMillis = 5000

// Per-connection pragmas, applied by the driver to every pooled connection.
var connPragmas = []string{
	fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis),
	"journal_mode(WAL)",
}

// Open opens the SQLite database at path and migrates it to the current schema.
//
// The sessions table stores created_at through the text codec and expires_at and
// last_seen_at through the tick codec, so expiry queries compare plain integers.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite db %s: %w", path, err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

func dsn(path string) string {
	params := make([]string, 0, len(connPragmas))
	for _, p := range connPragmas {
		params = append(params, "_pragma="+p)
	}

	return path + "?" + strings.Join(params, "&")
}
