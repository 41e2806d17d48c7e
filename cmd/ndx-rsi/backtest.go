package main

import (
	"context"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/ndx-rsi/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/report"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// DefaultBacktestStart is where history starts when --start is not given.
var DefaultBacktestStart = time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC)

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		symbolFlag(),
		dataFlag(),
		dateFlag("start", "First date in `YYYY-MM-DD` format", DefaultBacktestStart),
		dateFlag("end", "Last date in `YYYY-MM-DD` format. Defaults to the last available bar.", time.Time{}),
	}
}

func (a *app) backtestCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-backtest",
		Usage: "Replay a strategy over history and compare it with buy and hold",
		Flags: append(rangeFlags(),
			strategyFlag(),
			&cli.StringFlag{
				Name:  "series",
				Usage: "Directory to export the daily series and trades into",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format of --series (parquet or csv)",
				Value: string(report.FormatParquet),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result as YAML to this file",
			},
		),
		Action: a.backtestAction,
	}
}

// loadBars reads and cleans the bars selected by the range flags.
func (a *app) loadBars(ctx context.Context, cmd *cli.Command, s *session) ([]types.Bar, string, error) {
	symbol := cmd.String("symbol")

	src, code, err := a.source(s, symbol, cmd.String("data"))
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	raw, err := src.Bars(ctx, code, optionalDate(cmd.Timestamp("start")), optionalDate(cmd.Timestamp("end")))
	if err != nil {
		return nil, "", err
	}

	bars, _ := datasource.Clean(raw)
	if len(bars) == 0 {
		return nil, "", errors.Newf(errors.ErrCodeNoDataFound, "no usable bars for %s (%s)", symbol, code)
	}

	s.log.Debug("Loaded bars",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.Int("dropped", len(raw)-len(bars)),
	)

	return bars, symbol, nil
}

func (a *app) backtestAction(ctx context.Context, cmd *cli.Command) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	format := report.Format(cmd.String("format"))
	if format != report.FormatParquet && format != report.FormatCSV {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown export format %q", format)
	}

	strat, err := a.registry.Create(cmd.String("strategy"), s.cfg.Strategies)
	if err != nil {
		return err
	}

	bars, symbol, err := a.loadBars(ctx, cmd, s)
	if err != nil {
		return err
	}

	eng, err := enginev1.NewBacktestEngineV1(s.cfg.Backtest, s.log)
	if err != nil {
		return err
	}

	seriesDir := cmd.String("series")

	result, err := eng.Run(ctx, indicator.NewFrame(bars), strat, engine.RunOptions{
		Symbol:       symbol,
		ReturnSeries: seriesDir != "",
	})
	if err != nil {
		return err
	}

	s.println(report.Comparison(result))

	if result.Failed() {
		return cli.Exit("", 1)
	}

	if seriesDir != "" {
		paths, err := report.ExportResults([]*types.Result{result}, seriesDir, format, s.log)
		if err != nil {
			return err
		}

		for _, p := range paths {
			s.printf("Exported %s\n", p)
		}
	}

	if out := cmd.String("output"); out != "" {
		if err := types.WriteResults(out, []*types.Result{result}); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to write result", err)
		}

		s.printf("Result written to %s\n", out)
	}

	return nil
}
