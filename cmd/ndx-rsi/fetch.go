package main

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func (a *app) fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-data",
		Usage: "Download daily bars from polygon.io and check that they are usable",
		Flags: []cli.Flag{
			symbolFlag(),
			dateFlag("start", "First date in `YYYY-MM-DD` format. Defaults to ten years before end.", time.Time{}),
			dateFlag("end", "Last date in `YYYY-MM-DD` format. Defaults to today.", time.Time{}),
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory to store the parquet file in. Defaults to data_dir of the configuration.",
			},
		},
		Action: a.fetchAction,
	}
}

func (a *app) fetchAction(ctx context.Context, cmd *cli.Command) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	symbol := cmd.String("symbol")
	code := s.cfg.Index(symbol).Code

	end := cmd.Timestamp("end")
	if end.IsZero() {
		end = a.now()
	}

	start := cmd.Timestamp("start")
	if start.IsZero() {
		start = end.AddDate(-datasource.DefaultHistoryYears, 0, 0)
	}

	dir := cmd.String("output")
	if dir == "" {
		dir = s.cfg.DataDir
	}

	provider, err := a.remote(s)
	if err != nil {
		return err
	}
	defer provider.Close()

	path, err := provider.Download(ctx, code, start, end, dir)
	if err != nil {
		return err
	}

	stored, err := datasource.NewDuckDBSource(path, s.log)
	if err != nil {
		return err
	}
	defer stored.Close()

	bars, err := stored.Bars(ctx, code, optional.None[time.Time](), optional.None[time.Time]())
	if err != nil {
		return err
	}

	prepared, err := datasource.Preprocess(bars)
	if err != nil {
		return err
	}

	s.log.Info("Fetched market data", zap.String("symbol", symbol), zap.String("code", code), zap.String("path", path))

	s.printf("Saved %d bars of %s (%s) to %s\n", len(bars), symbol, code, path)
	s.printf("Usable rows: %d, dropped: %d, ready: %t\n", prepared.Frame.Len(), prepared.Dropped, prepared.OK)

	if !prepared.OK {
		return cli.Exit("data is not usable for signals: too few rows or a broken tail", 1)
	}

	return nil
}
