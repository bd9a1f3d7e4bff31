package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

// Each entry upgrades the schema by one version. Applied steps are tracked in PRAGMA user_version.
var migrations = [][]string{
	{
		// created_at uses the text codec, expires_at and last_seen_at use the tick codec.
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			last_seen_at INTEGER NULL
		);`,
		`CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		if err := applyMigration(ctx, db, v+1, migrations[v]); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, version)); err != nil {
		return fmt.Errorf("set schema version %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}

	return nil
}
