package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"go.uber.org/zap"
)

// TrendBreakColumn is the moving average the trend-break exit compares against.
var TrendBreakColumn = indicator.SMAColumn{Period: 50}

type BacktestEngineV1 struct {
	config            engine.Config
	log               *logger.Logger
	indicatorRegistry indicator.ColumnRegistry
}

// NewBacktestEngineV1 validates config and returns an engine. A nil logger discards output.
func NewBacktestEngineV1(config engine.Config, log *logger.Logger) (engine.Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BacktestEngineV1{
		config:            config,
		log:               log.Named("backtest"),
		indicatorRegistry: indicator.NewColumnRegistry(),
	}, nil
}

// Config implements engine.Engine.
func (b *BacktestEngineV1) Config() engine.Config {
	return b.config
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run implements engine.Engine. Missing indicator columns are computed onto frame.
func (b *BacktestEngineV1) Run(ctx context.Context, frame *indicator.Frame, strat strategy.Strategy, opts engine.RunOptions) (*types.Result, error) {
	runID := uuid.New().String()
	warmup := strat.WarmupBars()

	if frame.Len() <= warmup {
		b.log.Info("Insufficient data for backtest",
			zap.String("run_id", runID),
			zap.String("strategy", strat.Name()),
			zap.Int("bars", frame.Len()),
			zap.Int("warmup", warmup),
		)

		result := types.InsufficientDataResult(runID, strat.Name())
		result.Symbol = opts.Symbol
		b.notifyEnd(opts.Callbacks, runID, result)

		return result, nil
	}

	if err := types.ValidateBars(frame.Bars()); err != nil {
		return nil, err
	}

	columns := strat.Indicators()
	if b.config.UseTrendBreakExit {
		columns = append(columns, TrendBreakColumn)
	}

	if err := b.indicatorRegistry.Attach(frame, columns...); err != nil {
		return nil, err
	}

	total := frame.Len() - warmup

	if cb := opts.Callbacks.OnRunStart; cb != nil {
		if err := (*cb)(runID, strat.Name(), total); err != nil {
			return nil, err
		}
	}

	b.log.Info("Backtest started",
		zap.String("run_id", runID),
		zap.String("strategy", strat.Name()),
		zap.Int("bars", total),
		zap.Bool("next_day_execution", b.config.NextDayExecution),
	)

	bars := frame.Bars()
	state := NewBacktestState(b.config, b.log, opts.ReturnSeries)
	startClose := bars[warmup].Close

	for i := warmup; i < frame.Len(); i++ {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", ctx.Err())
		default:
		}

		window := frame.Window(i)
		prevEquity := state.Equity()

		var held float64
		if b.config.NextDayExecution {
			held = b.stepNextDay(state, window, strat)
		} else {
			held = b.stepImmediate(state, window, strat)
		}

		state.RecordBar(bars[i], prevEquity, held, bars[i].Close/startClose-1)

		if cb := opts.Callbacks.OnProcessData; cb != nil {
			if err := (*cb)(i-warmup+1, total); err != nil {
				return nil, err
			}
		}
	}

	years := Years(bars[warmup].Time, bars[len(bars)-1].Time)

	result := &types.Result{
		ID:        runID,
		Timestamp: time.Now().UTC(),
		Symbol:    opts.Symbol,
		Strategy:  strat.Name(),
		Benchmark: Benchmark(types.Closes(bars[warmup:]), years, b.config.RiskFreeRate),
		Trades:    state.Trades(),
	}
	result.SetMetrics(state.Metrics(years))

	if opts.ReturnSeries {
		result.Series = state.series
	}

	b.log.Info("Backtest finished",
		zap.String("run_id", runID),
		zap.Float64("total_return", result.Metrics.TotalReturn),
		zap.Float64("max_drawdown", result.Metrics.MaxDrawdown),
		zap.Int("trades", result.Metrics.TotalTrades),
	)

	b.notifyEnd(opts.Callbacks, runID, result)

	return result, nil
}

// stepImmediate runs one bar with same-bar execution at the close and returns the
// position held at the end of the bar.
func (b *BacktestEngineV1) stepImmediate(state *BacktestState, window *indicator.Frame, strat strategy.Strategy) float64 {
	bar := window.Last()
	sig := strat.GenerateSignal(window, state.PositionContext())

	closed := false
	blockNew := false

	if b.config.CircuitBreaker.Enabled {
		dd := state.Drawdown(bar.Close)

		if dd >= b.config.CircuitBreaker.DrawdownThreshold && state.Position().IsSome() {
			state.Liquidate(bar, dd)

			closed = true
		} else {
			blockNew = state.ConsumeCooldown()
		}
	}

	if !closed && b.config.UseIntrabarStopTake {
		closed = b.checkStopTake(state, bar)
	}

	if !closed && b.config.UseTrendBreakExit {
		closed = b.checkTrendBreak(state, window)
	}

	if !closed {
		b.applySignal(state, window, strat, sig, blockNew)
	}

	if state.Position().IsNone() {
		state.AccrueFlat()
	}

	return state.Size()
}

// checkStopTake closes at the stored level touched by the bar range. The stop is
// tested before the take, so a bar spanning both resolves to the stop. Filling at
// the level rather than the close simplifies the real intrabar path.
func (b *BacktestEngineV1) checkStopTake(state *BacktestState, bar types.Bar) bool {
	if state.Position().IsNone() {
		return false
	}

	p := state.Position().Unwrap()
	stop, take := p.Levels.StopLoss, p.Levels.TakeProfit

	var stopHit, takeHit bool
	if p.Size > 0 {
		stopHit = stop > 0 && bar.Low <= stop
		takeHit = take > 0 && bar.High >= take
	} else {
		stopHit = stop > 0 && bar.High >= stop
		takeHit = take > 0 && bar.Low <= take
	}

	switch {
	case stopHit:
		state.ClosePosition(bar.Time, stop, types.ExitStopLoss)
	case takeHit:
		state.ClosePosition(bar.Time, take, types.ExitTakeProfit)
	default:
		return false
	}

	return true
}

// checkTrendBreak closes longs below the MA50 and shorts above it.
func (b *BacktestEngineV1) checkTrendBreak(state *BacktestState, window *indicator.Frame) bool {
	if state.Position().IsNone() {
		return false
	}

	ma := window.Value(TrendBreakColumn.Name())
	if !indicator.IsDefined(ma) {
		return false
	}

	bar := window.Last()
	size := state.Size()

	if (size > 0 && bar.Close < ma) || (size < 0 && bar.Close > ma) {
		state.ClosePosition(bar.Time, bar.Close, types.ExitTrendBreak)

		return true
	}

	return false
}

// applySignal moves the position toward the signal's target. Same-sign resizes are ignored.
func (b *BacktestEngineV1) applySignal(state *BacktestState, window *indicator.Frame, strat strategy.Strategy, sig types.Signal, blockNew bool) {
	bar := window.Last()
	held := state.Size()
	target := sig.TargetPosition

	switch {
	case held == 0 && target == 0:
		return
	case held != 0 && target != 0 && sameSide(held, target):
		return
	case held != 0:
		state.ClosePosition(bar.Time, bar.Close, types.ExitSignal)
	}

	if target == 0 {
		return
	}

	if blockNew {
		b.log.Debug("Entry blocked by cooldown",
			zap.Time("time", bar.Time),
			zap.String("reason", string(sig.Reason)),
		)

		return
	}

	state.OpenPosition(bar, target, strat.CalculateRisk(sig, window), sig.Reason)
}

// stepNextDay runs one bar with one-bar execution lag and returns the position
// applied to this bar's return.
func (b *BacktestEngineV1) stepNextDay(state *BacktestState, window *indicator.Frame, strat strategy.Strategy) float64 {
	bars := window.Bars()
	bar := bars[len(bars)-1]
	held := state.Size()

	if held != 0 {
		prev := bars[len(bars)-2].Close
		state.ApplyBarReturn(held, bar.Close/prev-1)
	}

	sig := strat.GenerateSignal(window, state.PositionContext())
	target := sig.TargetPosition

	if b.config.CircuitBreaker.Enabled {
		dd := state.Drawdown(bar.Close)

		if dd >= b.config.CircuitBreaker.DrawdownThreshold && state.Position().IsSome() {
			state.Liquidate(bar, dd)

			target = 0
		} else if state.ConsumeCooldown() && target != 0 {
			current := state.Size()
			if current == 0 || !sameSide(current, target) {
				target = 0
			}
		}
	}

	b.rebalance(state, window, strat, sig, target)

	if held == 0 {
		state.AccrueFlat()
	}

	return held
}

// rebalance moves the next-day position to target at this bar's close, paying
// one round trip for any size change.
func (b *BacktestEngineV1) rebalance(state *BacktestState, window *indicator.Frame, strat strategy.Strategy, sig types.Signal, target float64) {
	bar := window.Last()
	current := state.Size()

	if target == current {
		return
	}

	state.ChargeCommission()

	if current != 0 && (target == 0 || !sameSide(current, target)) {
		state.ClosePosition(bar.Time, bar.Close, types.ExitSignal)
	}

	if target == 0 {
		return
	}

	if state.Position().IsSome() {
		state.Resize(target)

		return
	}

	state.OpenPosition(bar, target, strat.CalculateRisk(sig, window), sig.Reason)
}

func (b *BacktestEngineV1) notifyEnd(callbacks engine.LifecycleCallbacks, runID string, result *types.Result) {
	if cb := callbacks.OnRunEnd; cb != nil {
		(*cb)(runID, result)
	}
}

func sameSide(a, b float64) bool {
	return (a > 0) == (b > 0)
}
