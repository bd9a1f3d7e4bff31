package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/skobkin/utcstamp/internal/app"
	"github.com/skobkin/utcstamp/internal/codec"
	"github.com/skobkin/utcstamp/internal/config"
	"github.com/skobkin/utcstamp/internal/domain"
	"github.com/skobkin/utcstamp/internal/timestamp"
	"github.com/skobkin/utcstamp/internal/utctime"
)

const checkSessionTTL = time.Hour

func main() {
	// Must run before anything else touches time.Local.
	utctime.Install(slog.Default())

	if err := newApp(utctime.SystemClock{}).Run(os.Args); err != nil {
		slog.Error("run utcstamp", "error", err)
		os.Exit(1)
	}
}

func newApp(clock utctime.Clock) *cli.App {
	codecFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "codec, c",
			Usage: "storage codec: " + strings.Join(codec.Names(), ", ") + " (default: storage.codec from config)",
		},
		cli.DurationFlag{
			Name:  "resolution, r",
			Usage: "tick size for the tick codec (default: storage.tick_resolution from config)",
		},
	}

	cliApp := cli.NewApp()
	cliApp.Name = app.Name
	cliApp.Usage = "convert timestamps to and from their UTC storage form"
	cliApp.Version = app.BuildVersionWithDate()
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "root",
			Usage: "directory with config, database and logs (default: user config dir)",
		},
	}
	cliApp.Commands = []cli.Command{
		{
			Name:      "encode",
			Usage:     "print the storage value of a timestamp",
			ArgsUsage: "<timestamp|now>",
			Flags:     codecFlags,
			Action: func(c *cli.Context) error {
				cd, err := codecFromFlags(c)
				if err != nil {
					return err
				}
				out, err := encodeArg(cd, c.Args().First(), clock)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, out)
				return err
			},
		},
		{
			Name:      "decode",
			Usage:     "print the UTC timestamp stored as a value",
			ArgsUsage: "<value>",
			Flags:     codecFlags,
			Action: func(c *cli.Context) error {
				cd, err := codecFromFlags(c)
				if err != nil {
					return err
				}
				out, err := decodeArg(cd, c.Args().First())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.App.Writer, out)
				return err
			},
		},
		{
			Name:  "check",
			Usage: "write a session to the database, read it back and verify its times are UTC",
			Action: func(c *cli.Context) error {
				paths, err := resolvePaths(c.GlobalString("root"))
				if err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				rt, err := app.Initialize(ctx, paths)
				if err != nil {
					return fmt.Errorf("initialize runtime: %w", err)
				}
				defer func() { _ = rt.Close() }()

				return runCheck(rt, clock, c.App.Writer)
			},
		},
	}

	return cliApp
}

// codecFromFlags prefers explicit flags and falls back to the storage section of the config file.
func codecFromFlags(c *cli.Context) (codec.Codec, error) {
	if c.IsSet("codec") {
		return codec.ForName(c.String("codec"), c.Duration("resolution"))
	}

	paths, err := resolvePaths(c.GlobalString("root"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if c.IsSet("resolution") {
		cfg.Storage.TickResolution = config.Duration(c.Duration("resolution"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg.Codec()
}

func resolvePaths(root string) (app.Paths, error) {
	if strings.TrimSpace(root) != "" {
		return app.PathsIn(root)
	}

	return app.ResolvePaths()
}

// encodeArg accepts anything the text codec can parse, so zone-less input is taken as UTC.
func encodeArg(cd codec.Codec, raw string, clock utctime.Clock) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("timestamp argument is required")
	}

	var at time.Time
	if strings.EqualFold(raw, "now") {
		at = clock.Now()
	} else {
		parsed, err := codec.NewTextCodec().Parse(raw)
		if err != nil {
			return "", err
		}
		at = parsed
	}

	v, err := cd.Bind(timestamp.Aware(at))
	if err != nil {
		return "", err
	}

	return fmt.Sprint(v), nil
}

func decodeArg(cd codec.Codec, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("value argument is required")
	}

	var src any = raw
	if cd.Name() == codec.NameTick {
		ticks, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", &codec.ParseError{Input: raw, Err: err}
		}
		src = ticks
	}

	v, err := cd.Extract(src)
	if err != nil {
		return "", err
	}

	return v.UTC().Format(time.RFC3339Nano), nil
}

func runCheck(rt *app.Runtime, clock utctime.Clock, out io.Writer) error {
	logger := rt.LogManager.Logger("check")
	now := clock.Now()

	s, err := rt.Sessions.Create(rt.Ctx, domain.Session{Subject: "check", CreatedAt: now, ExpiresAt: now.Add(checkSessionTTL)})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	select {
	case err := <-rt.Sessions.TouchLater(rt.WriterQueue, s.ID, now):
		if err != nil {
			return fmt.Errorf("touch session: %w", err)
		}
	case <-rt.Ctx.Done():
		return fmt.Errorf("touch session: %w", rt.Ctx.Err())
	}

	got, err := rt.Sessions.Get(rt.Ctx, s.ID)
	if err != nil {
		return fmt.Errorf("read session back: %w", err)
	}
	for name, ts := range map[string]time.Time{"created_at": got.CreatedAt, "expires_at": got.ExpiresAt, "last_seen_at": got.LastSeenAt} {
		if ts.Location() != time.UTC {
			return fmt.Errorf("%s came back in %s, expected UTC", name, ts.Location())
		}
	}
	if !got.ExpiresAt.Equal(now.Add(checkSessionTTL).Round(rt.Codecs.Tick.Resolution())) {
		return fmt.Errorf("expires_at drifted: stored %s, read %s", now.Add(checkSessionTTL), got.ExpiresAt)
	}

	stored, err := rt.Codec.Bind(timestamp.Aware(got.ExpiresAt))
	if err != nil {
		return fmt.Errorf("encode expires_at with %s codec: %w", rt.Codec.Name(), err)
	}
	back, err := rt.Codec.Extract(stored)
	if err != nil {
		return fmt.Errorf("decode expires_at with %s codec: %w", rt.Codec.Name(), err)
	}
	if !back.UTC().Equal(got.ExpiresAt) {
		return fmt.Errorf("%s codec changed expires_at: %s became %s", rt.Codec.Name(), got.ExpiresAt, back.UTC())
	}

	deleted, err := rt.Sessions.DeleteExpired(rt.Ctx, got.ExpiresAt)
	if err != nil {
		return fmt.Errorf("delete check session: %w", err)
	}
	logger.Info("check passed", "session", got.ID, "expires_at", got.ExpiresAt, "deleted", deleted)

	_, err = fmt.Fprintf(out, "ok: session %s expires %s (%s: %v)\n", got.ID, got.CookieExpiry(), rt.Codec.Name(), stored)
	return err
}
