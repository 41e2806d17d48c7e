package main

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/report"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func (a *app) staticCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-static",
		Usage: "Write timeseries.json and signal.json for a static dashboard",
		Flags: []cli.Flag{
			symbolFlag(),
			dataFlag(),
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "Strategy whose latest signal is published",
				Value: strategy.NameEMATrendV2,
			},
			&cli.IntFlag{
				Name:  "years",
				Usage: "Years of close history in timeseries.json",
				Value: 5,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "web",
			},
		},
		Action: a.staticAction,
	}
}

func (a *app) staticAction(ctx context.Context, cmd *cli.Command) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	strat, err := a.registry.Create(cmd.String("strategy"), s.cfg.Strategies)
	if err != nil {
		return err
	}

	symbol := cmd.String("symbol")

	src, code, err := a.source(s, symbol, cmd.String("data"))
	if err != nil {
		return err
	}
	defer src.Close()

	now := a.now()
	from := types.DateOf(now).AddDate(-int(cmd.Int("years")), 0, 0)

	history, err := src.Bars(ctx, code, optional.Some(from), optional.Some(now))
	if err != nil && !errors.HasCode(err, errors.ErrCodeNoDataFound) {
		return err
	}

	history, _ = datasource.Clean(history)

	payload := report.ErrorPayload(types.ErrInsufficientData)

	frame, err := latestFrame(ctx, src, code, strat.WarmupBars(), now)
	switch {
	case errors.IsInsufficientDataError(err):
		s.log.Warn("Insufficient data for a signal", zap.String("symbol", symbol), zap.Error(err))
	case err != nil:
		return err
	default:
		if err := indicator.NewColumnRegistry().Attach(frame, strat.Indicators()...); err != nil {
			return err
		}

		sig := strat.GenerateSignal(frame, optional.None[types.PositionContext]())
		payload = report.NewSignalPayload(strat, symbol, frame, sig, strat.CalculateRisk(sig, frame))
	}

	paths, err := report.WriteStatic(cmd.String("output"), report.NewTimeseries(symbol, from, now, history), payload)
	if err != nil {
		return err
	}

	s.printf("Generated %s and %s\n", paths[0], paths[1])

	return nil
}
