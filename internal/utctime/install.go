package utctime

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	installOnce sync.Once
	installed   atomic.Bool
)

// Install replaces time.Local with UTC for the rest of the process lifetime.
//
// After Install, time.Now, time.Unix and time.Date(..., time.Local) all produce
// UTC values, and so does any driver that falls back to the local zone for
// zone-less columns. The change is global and cannot be undone. Call it once
// from main before anything else constructs or compares timestamps; it is not
// safe to race with other goroutines reading time.Local. Only the first call
// has an effect, later calls return false.
func Install(logger *slog.Logger) bool {
	applied := false
	installOnce.Do(func() {
		previous := time.Local.String()
		time.Local = time.UTC
		installed.Store(true)
		applied = true
		if logger != nil {
			logger.Info("local time zone replaced with UTC", "previous", previous)
		}
	})

	return applied
}

// Installed reports whether Install has taken effect.
func Installed() bool {
	return installed.Load()
}
