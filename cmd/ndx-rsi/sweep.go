package main

import (
	"context"

	"github.com/rxtech-lab/ndx-rsi/internal/backtest/sweep"
	"github.com/rxtech-lab/ndx-rsi/internal/report"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/urfave/cli/v3"
)

func (a *app) sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Backtest several strategies concurrently on the same history",
		Flags: append(rangeFlags(),
			&cli.StringSliceFlag{
				Name:  "strategies",
				Usage: "Strategy names to run. Defaults to every registered strategy.",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent backtests, 0 for one per CPU",
			},
			&cli.BoolFlag{
				Name:  "both-modes",
				Usage: "Run each strategy with same-bar and next-day execution",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write all results as YAML to this file",
			},
		),
		Action: a.sweepAction,
	}
}

func (a *app) sweepJobs(cmd *cli.Command, s *session) ([]sweep.Job, error) {
	names := cmd.StringSlice("strategies")
	if len(names) == 0 {
		names = a.registry.Names()
	}

	jobs, err := sweep.Grid(a.registry, names, s.cfg.Strategies, s.cfg.Backtest)
	if err != nil {
		return nil, err
	}

	if !cmd.Bool("both-modes") {
		return jobs, nil
	}

	nextDay := s.cfg.Backtest
	nextDay.NextDayExecution = !nextDay.NextDayExecution

	more, err := sweep.Grid(a.registry, names, s.cfg.Strategies, nextDay)
	if err != nil {
		return nil, err
	}

	mode := "same_bar"
	if nextDay.NextDayExecution {
		mode = "next_day"
	}

	for i := range more {
		more[i].Name += "/" + mode
	}

	return append(jobs, more...), nil
}

func (a *app) sweepAction(ctx context.Context, cmd *cli.Command) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	jobs, err := a.sweepJobs(cmd, s)
	if err != nil {
		return err
	}

	bars, symbol, err := a.loadBars(ctx, cmd, s)
	if err != nil {
		return err
	}

	outcomes, err := sweep.Run(ctx, bars, jobs, sweep.Options{
		Symbol:       symbol,
		Workers:      int(cmd.Int("workers")),
		ShowProgress: cmd.Bool("progress"),
	}, s.log)
	if err != nil {
		return err
	}

	results := make([]*types.Result, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Result
		// keep the mode visible in the table when both modes ran
		results[i].Strategy = o.Job.Name
	}

	s.println(report.Leaderboard(results))

	if best, ok := sweep.Best(outcomes); ok {
		s.printf("Best Sharpe: %s (%.4f)\n", best.Job.Name, best.Result.SharpeRatio)
	} else {
		s.println("Best Sharpe: none, every run failed")
	}

	if out := cmd.String("output"); out != "" {
		if err := types.WriteResults(out, results); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to write results", err)
		}

		s.printf("Results written to %s\n", out)
	}

	return nil
}
