package utctime

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Install is irreversible, so this is the only test in the package that calls it.
func TestInstall_ReplacesLocalZoneOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.True(t, Install(logger), "first install applies")
	require.False(t, Install(logger), "second install is a no-op")
	require.True(t, Installed())
	require.Equal(t, 1, strings.Count(buf.String(), "local time zone replaced with UTC"), buf.String())

	require.Equal(t, time.UTC, time.Now().Location())

	local := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)
	require.Equal(t, time.UTC, local.Location())
	require.EqualValues(t, 1705320000, local.Unix())

	explicit := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	_, offset := explicit.Zone()
	require.Equal(t, -5*60*60, offset)
}
