package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/codec"
)

const (
	DefaultCodec          = codec.NameTick
	DefaultTickResolution = codec.DefaultTickResolution
)

// Duration is a time.Duration stored as a Go duration string, e.g. "1us".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(parsed)

	return nil
}

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level string `json:"level"`
	// Format is "text" or "json".
	Format    string `json:"format"`
	LogToFile bool   `json:"log_to_file"`
}

// StorageConfig selects how timestamps are stored.
type StorageConfig struct {
	// Codec ("tick" or "text") is the storage form used by the CLI when no --codec is given.
	// Session columns always pin their own codec.
	Codec          string   `json:"codec"`
	TickResolution Duration `json:"tick_resolution"`
	// DBFile overrides the default database location.
	DBFile string `json:"db_file"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Storage StorageConfig `json:"storage"`
	Logging LoggingConfig `json:"logging"`
}

func Default() AppConfig {
	return AppConfig{
		Storage: StorageConfig{
			Codec:          DefaultCodec,
			TickResolution: Duration(DefaultTickResolution),
			DBFile:         "",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			LogToFile: false,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Storage.Codec = strings.ToLower(strings.TrimSpace(c.Storage.Codec))
	if c.Storage.Codec == "" {
		c.Storage.Codec = DefaultCodec
	}
	if c.Storage.TickResolution == 0 {
		c.Storage.TickResolution = Duration(DefaultTickResolution)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c AppConfig) Validate() error {
	if _, err := codec.ForName(c.Storage.Codec, time.Duration(c.Storage.TickResolution)); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	return nil
}

// Codec builds the configured default codec.
func (c AppConfig) Codec() (codec.Codec, error) {
	return codec.ForName(c.Storage.Codec, time.Duration(c.Storage.TickResolution))
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
