package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppConfigFillMissingDefaults(t *testing.T) {
	cfg := AppConfig{}
	cfg.FillMissingDefaults()

	require.Equal(t, DefaultCodec, cfg.Storage.Codec)
	require.Equal(t, DefaultTickResolution, time.Duration(cfg.Storage.TickResolution))
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesStorageSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  "storage": {
    "codec": " Text ",
    "tick_resolution": "1ms",
    "db_file": "/tmp/sessions.db"
  },
  "logging": {
    "level": "debug"
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "text", cfg.Storage.Codec)
	require.Equal(t, time.Millisecond, time.Duration(cfg.Storage.TickResolution))
	require.Equal(t, "/tmp/sessions.db", cfg.Storage.DBFile)
	require.Equal(t, "debug", cfg.Logging.Level)

	c, err := cfg.Codec()
	require.NoError(t, err)
	require.Equal(t, "text", c.Name())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage": {"tick_resolution": "fast"}}`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "text codec", mutate: func(c *AppConfig) { c.Storage.Codec = "text" }},
		{name: "unknown codec", mutate: func(c *AppConfig) { c.Storage.Codec = "json" }, wantErr: "unknown codec"},
		{name: "bad resolution", mutate: func(c *AppConfig) { c.Storage.TickResolution = Duration(7 * time.Nanosecond) }, wantErr: "tick resolution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Storage.Codec = "text"
	cfg.Storage.TickResolution = Duration(time.Millisecond)

	require.NoError(t, Save(path, cfg))
	raw, err := os.ReadFile(filepath.Clean(path))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"tick_resolution": "1ms"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage.Codec = "json"

	require.Error(t, Save(filepath.Join(t.TempDir(), "config.json"), cfg))
}
