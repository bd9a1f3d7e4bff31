package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/codec"
)

var (
	// Version is filled by ldflags in release builds.
	Version = "dev"
	// BuildDate is filled by ldflags in release builds. A value without an offset is UTC.
	BuildDate = ""
)

func BuildVersion() string {
	version := strings.TrimSpace(Version)
	if version == "" {
		return "dev"
	}

	return version
}

// BuildTime parses BuildDate with the text codec grammar.
func BuildTime() (time.Time, bool) {
	raw := strings.TrimSpace(BuildDate)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := codec.NewTextCodec().Parse(raw)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func BuildDateYMD() string {
	if t, ok := BuildTime(); ok {
		return t.Format(time.DateOnly)
	}

	return strings.TrimSpace(BuildDate)
}

func BuildVersionWithDate() string {
	version := BuildVersion()
	if buildDate := BuildDateYMD(); buildDate != "" {
		return fmt.Sprintf("%s (%s)", version, buildDate)
	}

	return version
}
