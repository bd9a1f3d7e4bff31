package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/config"
	"github.com/skobkin/utcstamp/internal/logging"
	"github.com/skobkin/utcstamp/internal/persistence"
	"github.com/skobkin/utcstamp/internal/utctime"
)

// Runtime wires configuration, logging, codecs and storage for one process.
type Runtime struct {
	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager *logging.Manager
	DB         *sql.DB

	// Codec is the configured default for ad hoc conversions.
	Codec  codec.Codec
	Codecs persistence.Codecs

	Sessions    *persistence.SessionRepo
	WriterQueue *persistence.WriterQueue
}

// Initialize expects utctime.Install to have been called by main already.
func Initialize(parent context.Context, paths Paths) (*Runtime, error) {
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if dbFile := strings.TrimSpace(cfg.Storage.DBFile); dbFile != "" {
		paths.DBFile = dbFile
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting utcstamp runtime", "version", BuildVersion(), "build_date", BuildDateYMD(), "codec", cfg.Storage.Codec)
	if !utctime.Installed() {
		slog.Warn("utc hook is not installed, zone-less times from other libraries may be local")
	}

	resolution := time.Duration(cfg.Storage.TickResolution)
	rt.Codec, err = cfg.Codec()
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("initialize codec: %w", err)
	}
	rt.Codecs, err = persistence.NewCodecs(resolution)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.DB = db
	rt.Sessions = persistence.NewSessionRepo(db, rt.Codecs, utctime.SystemClock{})

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), WriterCapacity)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue

	return rt, nil
}

func (r *Runtime) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}
	return nil
}
