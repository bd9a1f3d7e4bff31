package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/domain"
	"github.com/skobkin/utcstamp/internal/timestamp"
	"github.com/skobkin/utcstamp/internal/utctime"
)

const sessionColumns = `id, subject, created_at, expires_at, last_seen_at`

// SessionRepo implements domain.SessionRepository using SQLite.
type SessionRepo struct {
	db     *sql.DB
	codecs Codecs
	clock  utctime.Clock
}

func NewSessionRepo(db *sql.DB, codecs Codecs, clock utctime.Clock) *SessionRepo {
	if clock == nil {
		clock = utctime.SystemClock{}
	}

	return &SessionRepo{db: db, codecs: codecs, clock: clock}
}

// Create stores a new session. An empty ID gets a random UUID, a zero CreatedAt gets the current time.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) (domain.Session, error) {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.clock.Now()
	}
	if s.ExpiresAt.IsZero() {
		return domain.Session{}, errors.New("session expiry is required")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions(`+sessionColumns+`)
		VALUES(?, ?, ?, ?, ?)
	`,
		s.ID,
		s.Subject,
		codec.Bind(r.codecs.Text, timestamp.Aware(s.CreatedAt)),
		codec.Bind(r.codecs.Tick, timestamp.Aware(s.ExpiresAt)),
		codec.Bind(r.codecs.Tick, optionalTime(s.LastSeenAt)),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("insert session: %w", err)
	}

	return r.Get(ctx, s.ID)
}

func (r *SessionRepo) Get(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("get session %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}

	return s, nil
}

// Touch records that the session was used at the given moment. Older moments never overwrite newer ones.
func (r *SessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = CASE
			WHEN last_seen_at IS NULL OR ?1 > last_seen_at THEN ?1
			ELSE last_seen_at
		END
		WHERE id = ?2
	`, codec.Bind(r.codecs.Tick, timestamp.Aware(at)), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("touch session %s: %w", id, domain.ErrSessionNotFound)
	}

	return nil
}

// ListActive returns sessions expiring after now, soonest first.
func (r *SessionRepo) ListActive(ctx context.Context, now time.Time) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE expires_at > ?
		ORDER BY expires_at ASC, id ASC
	`, codec.Bind(r.codecs.Tick, timestamp.Aware(now)))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Session, 0)
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return out, nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, codec.Bind(r.codecs.Tick, timestamp.Aware(now)))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows: %w", err)
	}

	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepo) scan(row rowScanner) (domain.Session, error) {
	var (
		s        domain.Session
		created  timestamp.Value
		expires  timestamp.Value
		lastSeen timestamp.Value
	)
	if err := row.Scan(
		&s.ID,
		&s.Subject,
		codec.Into(r.codecs.Text, &created),
		codec.Into(r.codecs.Tick, &expires),
		codec.Into(r.codecs.Tick, &lastSeen),
	); err != nil {
		return domain.Session{}, err
	}

	s.CreatedAt = created.UTC()
	s.ExpiresAt = expires.UTC()
	if !lastSeen.IsAbsent() {
		s.LastSeenAt = lastSeen.UTC()
	}

	return s, nil
}

// TouchLater schedules Touch on the writer queue.
func (r *SessionRepo) TouchLater(w *WriterQueue, id string, at time.Time) <-chan error {
	return w.Enqueue("touch session", func(ctx context.Context) error {
		return r.Touch(ctx, id, at)
	})
}
