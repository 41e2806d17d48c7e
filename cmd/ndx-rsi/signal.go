package main

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/datasource"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/report"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func (a *app) signalCommand() *cli.Command {
	return &cli.Command{
		Name:  "run-signal",
		Usage: "Compute the latest signal of a strategy and optionally push it to webhooks",
		Flags: []cli.Flag{
			symbolFlag(),
			dataFlag(),
			strategyFlag(),
			dateFlag("as-of", "Evaluate as of this `YYYY-MM-DD` date instead of today", time.Time{}),
			&cli.FloatFlag{
				Name:  "position",
				Usage: "Signed fraction currently held, 0 when flat",
			},
			&cli.StringFlag{
				Name:  "entry-reason",
				Usage: "Reason the current position was opened",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "Send the report to the configured webhooks",
			},
		},
		Action: a.signalAction,
	}
}

func currentPosition(size float64, reason string) optional.Option[types.PositionContext] {
	if size == 0 {
		return optional.None[types.PositionContext]()
	}

	return optional.Some(types.PositionContext{
		Direction:   types.DirectionOf(size),
		EntryReason: types.Reason(reason),
		Size:        size,
	})
}

func (a *app) signalAction(ctx context.Context, cmd *cli.Command) error {
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

	now := cmd.Timestamp("as-of")
	if now.IsZero() {
		now = a.now()
	}

	frame, err := latestFrame(ctx, src, code, strat.WarmupBars(), now)
	if errors.IsInsufficientDataError(err) {
		s.log.Warn("Insufficient data for a signal",
			zap.String("symbol", symbol),
			zap.Int("warmup", strat.WarmupBars()),
			zap.Error(err),
		)

		return cli.Exit(types.ErrInsufficientData, 1)
	}

	if err != nil {
		return err
	}

	if err := indicator.NewColumnRegistry().Attach(frame, strat.Indicators()...); err != nil {
		return err
	}

	sig := strat.GenerateSignal(frame, currentPosition(cmd.Float("position"), cmd.String("entry-reason")))
	levels := strat.CalculateRisk(sig, frame)

	text := report.SignalReport(strat, symbol, frame, sig, levels)
	s.println(text)

	if !cmd.Bool("notify") {
		return nil
	}

	targets := len(s.cfg.Notify.WebhookURLs)
	if targets == 0 {
		s.println("Notify: no webhook configured")

		return nil
	}

	sent, err := a.notifier(s.cfg.Notify, s.log).Notify(ctx, text)
	if err != nil {
		return err
	}

	s.printf("Notify: %d/%d webhooks delivered\n", sent, targets)

	return nil
}

// latestFrame loads the recent bars of code and cleans them. Incomplete trailing
// rows or a cleaned history no longer than warmup are an InsufficientDataError.
func latestFrame(ctx context.Context, src datasource.BarSource, code string, warmup int, now time.Time) (*indicator.Frame, error) {
	bars, err := datasource.Latest(ctx, src, code, warmup, now)
	if err != nil {
		return nil, err
	}

	prepared, err := datasource.Preprocess(bars)
	if err != nil {
		return nil, err
	}

	if n := prepared.Frame.Len(); !prepared.OK || n <= warmup {
		return nil, errors.NewInsufficientDataErrorf(warmup+1, n, code,
			"%s: %s has %d usable bars, %d dropped", types.ErrInsufficientData, code, n, prepared.Dropped)
	}

	return prepared.Frame, nil
}
