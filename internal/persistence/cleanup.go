package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ClearDatabase removes all sessions. The schema and its version are kept.
func ClearDatabase(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("database is not initialized")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions;`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	return nil
}
