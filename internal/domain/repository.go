package domain

import (
	"context"
	"time"
)

type SessionRepository interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context, now time.Time) ([]Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
