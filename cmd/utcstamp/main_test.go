package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skobkin/utcstamp/internal/app"
	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/config"
	"github.com/skobkin/utcstamp/internal/utctime"
)

var fixedClock = utctime.FixedClock{At: time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)}

func mustCodec(t *testing.T, name string, resolution time.Duration) codec.Codec {
	t.Helper()
	c, err := codec.ForName(name, resolution)
	require.NoError(t, err)
	return c
}

func TestEncodeArg(t *testing.T) {
	tick := mustCodec(t, codec.NameTick, time.Microsecond)
	text := mustCodec(t, codec.NameText, 0)

	tests := []struct {
		name  string
		codec codec.Codec
		in    string
		want  string
	}{
		{name: "tick utc", codec: tick, in: "2024-01-15T12:00:00Z", want: "1705320000000000"},
		{name: "tick naive is utc", codec: tick, in: "2024-01-15T12:00:00", want: "1705320000000000"},
		{name: "tick offset", codec: tick, in: "2024-01-15T13:00:00+01:00", want: "1705320000000000"},
		{name: "tick now", codec: tick, in: "now", want: "1705320000000000"},
		{name: "text naive", codec: text, in: "2024-01-15 12:00:00", want: "2024-01-15T12:00:00+00:00"},
		{name: "text now", codec: text, in: "NOW", want: "2024-01-15T12:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeArg(tt.codec, tt.in, fixedClock)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeArg_Errors(t *testing.T) {
	tick := mustCodec(t, codec.NameTick, time.Microsecond)

	_, err := encodeArg(tick, " ", fixedClock)
	require.Error(t, err, "missing argument")

	_, err = encodeArg(tick, "tomorrow", fixedClock)
	var perr *codec.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestDecodeArg(t *testing.T) {
	tick := mustCodec(t, codec.NameTick, time.Microsecond)
	text := mustCodec(t, codec.NameText, 0)

	got, err := decodeArg(tick, "1705320000000001")
	require.NoError(t, err)
	require.Equal(t, "2024-01-15T12:00:00.000001Z", got)

	got, err = decodeArg(text, "2024-01-15T15:00:00+03:00")
	require.NoError(t, err)
	require.Equal(t, "2024-01-15T12:00:00Z", got)

	_, err = decodeArg(tick, "12abc")
	var perr *codec.ParseError
	require.ErrorAs(t, err, &perr)

	_, err = decodeArg(tick, "9223372036854775807")
	var rerr *codec.RangeError
	require.ErrorAs(t, err, &rerr)
}

func TestApp_EncodeDecodeCommands(t *testing.T) {
	var out bytes.Buffer
	cliApp := newApp(fixedClock)
	cliApp.Writer = &out
	root := t.TempDir()

	require.NoError(t, cliApp.Run([]string{"utcstamp", "--root", root, "encode", "--codec", "text", "2024-01-15T12:00:00"}))
	require.NoError(t, cliApp.Run([]string{"utcstamp", "--root", root, "decode", "--resolution", "1ms", "1705320000000"}))
	require.Equal(t, "2024-01-15T12:00:00+00:00\n2024-01-15T12:00:00Z\n", out.String())

	require.Error(t, cliApp.Run([]string{"utcstamp", "encode", "--codec", "json", "now"}), "unknown codec")
}

func TestApp_CheckCommand(t *testing.T) {
	origDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origDefault) })

	var out bytes.Buffer
	cliApp := newApp(fixedClock)
	cliApp.Writer = &out

	require.NoError(t, cliApp.Run([]string{"utcstamp", "--root", t.TempDir(), "check"}))
	require.Regexp(t, `^ok: session \S+ expires Mon, 15 Jan 2024 13:00:00 GMT \(tick: 1705323600000000\)\n$`, out.String())
}

func saveTestConfig(t *testing.T, root string, storage config.StorageConfig) {
	t.Helper()

	paths, err := app.PathsIn(root)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Storage = storage
	require.NoError(t, config.Save(paths.ConfigFile, cfg))
}

func TestApp_UsesConfiguredCodec(t *testing.T) {
	tests := []struct {
		name    string
		storage config.StorageConfig
		args    []string
		want    string
	}{
		{
			name:    "text from config",
			storage: config.StorageConfig{Codec: codec.NameText},
			args:    []string{"encode", "2024-01-15T13:00:00+01:00"},
			want:    "2024-01-15T12:00:00+00:00\n",
		},
		{
			name:    "tick resolution from config",
			storage: config.StorageConfig{Codec: codec.NameTick, TickResolution: config.Duration(time.Millisecond)},
			args:    []string{"encode", "2024-01-15T12:00:00Z"},
			want:    "1705320000000\n",
		},
		{
			name:    "resolution flag overrides config",
			storage: config.StorageConfig{Codec: codec.NameTick, TickResolution: config.Duration(time.Millisecond)},
			args:    []string{"encode", "--resolution", "1s", "2024-01-15T12:00:00Z"},
			want:    "1705320000\n",
		},
		{
			name:    "codec flag overrides config",
			storage: config.StorageConfig{Codec: codec.NameText},
			args:    []string{"decode", "--codec", "tick", "1705320000000000"},
			want:    "2024-01-15T12:00:00Z\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			saveTestConfig(t, root, tt.storage)

			var out bytes.Buffer
			cliApp := newApp(fixedClock)
			cliApp.Writer = &out

			args := append([]string{"utcstamp", "--root", root}, tt.args...)
			require.NoError(t, cliApp.Run(args))
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestApp_CheckCommandUsesConfiguredCodec(t *testing.T) {
	origDefault := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origDefault) })

	root := t.TempDir()
	saveTestConfig(t, root, config.StorageConfig{Codec: codec.NameText})

	var out bytes.Buffer
	cliApp := newApp(fixedClock)
	cliApp.Writer = &out

	require.NoError(t, cliApp.Run([]string{"utcstamp", "--root", root, "check"}))
	require.Contains(t, out.String(), "(text: 2024-01-15T13:00:00+00:00)")
}
