package domain

import (
	"errors"
	"net/http"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a login session whose expiry ends up in a cookie.
// All timestamps are UTC. A zero LastSeenAt means the session was never used.
type Session struct {
	ID         string
	Subject    string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CookieExpiry returns the expiry in the form HTTP cookies expect.
func (s Session) CookieExpiry() string {
	return s.ExpiresAt.UTC().Format(http.TimeFormat)
}
