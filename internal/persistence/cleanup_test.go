package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skobkin/utcstamp/internal/domain"
)

func TestClearDatabase_ClearsAllTables(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := newTestRepo(t, db)

	for _, id := range []string{"a", "b"} {
		_, err := repo.Create(ctx, domain.Session{ID: id, Subject: id, ExpiresAt: testNow.Add(time.Hour)})
		require.NoError(t, err, "seed session %s", id)
	}

	require.NoError(t, ClearDatabase(ctx, db))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions;").Scan(&count))
	require.Zero(t, count, "sessions must be empty after clear")

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version))
	require.Equal(t, len(migrations), version, "clear must keep the schema")
}

func TestClearDatabase_NilDB(t *testing.T) {
	require.Error(t, ClearDatabase(context.Background(), nil))
}
