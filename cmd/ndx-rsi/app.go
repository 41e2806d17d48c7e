package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/config"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/notify"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/internal/version"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const dateLayout = "2006-01-02"

// app holds the process-wide dependencies of the CLI.
type app struct {
	out io.Writer
	// polygon builds the remote provider. Tests swap it for an offline fetcher.
	polygon  func(cfg datasource.PolygonConfig, log *logger.Logger) (*datasource.PolygonProvider, error)
	notifier func(cfg config.NotifyConfig, log *logger.Logger) notify.Notifier
	now      func() time.Time
	registry *strategy.Registry
}

func newApp(out io.Writer) *app {
	return &app{
		out:     out,
		polygon: datasource.NewPolygonProvider,
		notifier: func(cfg config.NotifyConfig, log *logger.Logger) notify.Notifier {
			return notify.NewWebhookNotifier(cfg.WebhookURLs, cfg.Timeout, log)
		},
		now:      time.Now,
		registry: strategy.NewRegistry(),
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    "ndx-rsi",
		Usage:   "RSI and trend signals and backtests for a single index",
		Version: version.GetVersion(),
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   fmt.Sprintf("Path to the configuration file or its directory (env %s)", config.EnvConfigPath),
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files to load before reading the environment",
				Value: []string{".env"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Shorthand for --log-level debug",
			},
		},
		// exit codes are resolved in main so tests keep the process alive
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			a.fetchCommand(),
			a.backtestCommand(),
			a.signalCommand(),
			a.verifyCommand(),
			a.sweepCommand(),
			a.staticCommand(),
			a.schemaCommand(),
		},
	}
}

// session is what every action needs once flags are parsed.
type session struct {
	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

func (a *app) open(cmd *cli.Command) (*session, error) {
	if err := config.LoadEnvFiles(cmd.StringSlice("env-file")...); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid log level", err)
	}

	if cmd.Bool("debug") {
		level = zapcore.DebugLevel
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, log: log, out: a.out}, nil
}

func (s *session) close() {
	_ = s.log.Sync()
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// source picks the bar source of symbol: an explicit file wins, then a duckdb
// index from the configuration, then polygon. The upstream code to query is
// returned with it.
func (a *app) source(s *session, symbol, dataPath string) (datasource.BarSource, string, error) {
	idx := s.cfg.Index(symbol)

	path := dataPath
	if path == "" && idx.Provider == datasource.ProviderDuckDB {
		path = idx.Path
	}

	if path != "" {
		src, err := datasource.NewDuckDBSource(path, s.log)
		if err != nil {
			return nil, "", err
		}

		s.log.Debug("Using file source", zap.String("symbol", symbol), zap.String("path", path))

		return datasource.NewCachedSource(src), idx.Code, nil
	}

	provider, err := a.remote(s)
	if err != nil {
		return nil, "", err
	}

	return datasource.NewCachedSource(provider), idx.Code, nil
}

func (a *app) remote(s *session) (*datasource.PolygonProvider, error) {
	if s.cfg.PolygonAPIKey == "" {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"%s is not set; pass --data or configure a duckdb index", config.EnvPolygonAPIKey)
	}

	return a.polygon(datasource.PolygonConfig{
		APIKey:       s.cfg.PolygonAPIKey,
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		ShowProgress: s.log.Core().Enabled(zapcore.InfoLevel),
	}, s.log)
}

func dateFlag(name, usage string, value time.Time) *cli.TimestampFlag {
	return &cli.TimestampFlag{
		Name:  name,
		Usage: usage,
		Value: value,
		Config: cli.TimestampConfig{
			Layouts: []string{dateLayout},
		},
	}
}

func optionalDate(t time.Time) optional.Option[time.Time] {
	if t.IsZero() {
		return optional.None[time.Time]()
	}

	return optional.Some(types.DateOf(t))
}

func symbolFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "symbol",
		Aliases: []string{"s"},
		Usage:   "Symbol of the index, mapped through the indices section of the configuration",
		Value:   "QQQ",
	}
}

func dataFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "Parquet or CSV file to read bars from instead of the configured provider",
	}
}

func strategyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "strategy",
		Usage: "Strategy name",
		Value: strategy.NameNDXShortTerm,
	}
}
