package main

import (
	"context"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
)

// verifiedPeriods are the RSI lookbacks cross-checked by verify-indicators.
var verifiedPeriods = []int{9, 24}

func (a *app) verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify-indicators",
		Usage: "Cross-check the simple-average RSI against Wilder smoothing",
		Flags: []cli.Flag{
			symbolFlag(),
			dataFlag(),
			dateFlag("start", "First date in `YYYY-MM-DD` format", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			dateFlag("end", "Last date in `YYYY-MM-DD` format", time.Time{}),
			&cli.FloatFlag{
				Name:  "max-diff",
				Usage: "Largest tolerated gap in RSI points",
				Value: 0.1,
			},
		},
		Action: a.verifyAction,
	}
}

func (a *app) verifyAction(ctx context.Context, cmd *cli.Command) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	bars, symbol, err := a.loadBars(ctx, cmd, s)
	if err != nil {
		return err
	}

	closes := indicator.NewFrame(bars).Closes()
	maxDiff := cmd.Float("max-diff")
	failed := 0

	s.printf("RSI check on %s, %d bars, tolerance %.4f\n", symbol, len(closes), maxDiff)

	for _, period := range verifiedPeriods {
		worst, ok, err := indicator.VerifyRSI(closes, period, maxDiff)
		if errors.IsInsufficientDataError(err) {
			return cli.Exit(err.Error(), 1)
		}

		if err != nil {
			return err
		}

		status := "PASS"
		if !ok {
			status = "FAIL"
			failed++
		}

		s.printf("  RSI(%d): %s (max diff %.4f)\n", period, status, worst)
	}

	if failed > 0 {
		return cli.Exit("indicator check failed", 1)
	}

	return nil
}
