// Package sweep runs independent backtests over the same bars concurrently.
package sweep

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/ndx-rsi/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one backtest in a sweep. Strategy instances must not be shared between jobs.
type Job struct {
	Name     string
	Strategy strategy.Strategy
	Config   engine.Config
}

// Outcome pairs a job with its result.
type Outcome struct {
	Job    Job
	Result *types.Result
}

// Options controls a sweep.
type Options struct {
	Symbol string
	// Workers bounds concurrency. Zero means GOMAXPROCS.
	Workers      int
	ShowProgress bool
	ReturnSeries bool
}

// Run executes every job against its own copy of bars and returns outcomes in job order.
// The first engine error cancels the remaining jobs.
func Run(ctx context.Context, bars []types.Bar, jobs []Job, opts Options, log *logger.Logger) ([]Outcome, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	log = log.Named("sweep")

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		bar *progressbar.ProgressBar
		mu  sync.Mutex
	)

	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(jobs),
			progressbar.OptionSetDescription(fmt.Sprintf("Sweeping %s", opts.Symbol)),
			progressbar.OptionShowCount(),
		)
	}

	var onRunEnd engine.OnRunEndCallback = func(runID string, result *types.Result) {
		log.Debug("Run finished",
			zap.String("run_id", runID),
			zap.String("strategy", result.Strategy),
			zap.String("error", result.Error),
		)

		if bar != nil {
			mu.Lock()
			_ = bar.Add(1)
			mu.Unlock()
		}
	}

	outcomes := make([]Outcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			eng, err := enginev1.NewBacktestEngineV1(job.Config, log)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeBacktestConfigError, err, "job %s", job.Name)
			}

			// columns are attached per run, so each job gets its own frame
			frame := indicator.NewFrame(bars)

			result, err := eng.Run(gctx, frame, job.Strategy, engine.RunOptions{
				Symbol:       opts.Symbol,
				ReturnSeries: opts.ReturnSeries,
				Callbacks:    engine.LifecycleCallbacks{OnRunEnd: &onRunEnd},
			})
			if err != nil {
				return err
			}

			outcomes[i] = Outcome{Job: job, Result: result}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if bar != nil {
		_ = bar.Finish()
	}

	log.Info("Sweep completed", zap.Int("jobs", len(jobs)), zap.Int("workers", workers))

	return outcomes, nil
}

// Grid builds one job per strategy name, each constructed from cfgs and run under cfg.
func Grid(registry *strategy.Registry, names []string, cfgs strategy.Configs, cfg engine.Config) ([]Job, error) {
	jobs := make([]Job, 0, len(names))

	for _, name := range names {
		s, err := registry.Create(name, cfgs)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, Job{Name: name, Strategy: s, Config: cfg})
	}

	return jobs, nil
}

// Best returns the successful outcome with the highest Sharpe ratio.
func Best(outcomes []Outcome) (Outcome, bool) {
	var (
		best  Outcome
		found bool
	)

	for _, o := range outcomes {
		if o.Result == nil || o.Result.Failed() {
			continue
		}

		if !found || o.Result.SharpeRatio > best.Result.SharpeRatio {
			best = o
			found = true
		}
	}

	return best, found
}
