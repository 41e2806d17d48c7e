package engine

import (
	"context"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// Lifecycle callback types for a backtest run.
// All callbacks with error return can abort execution if they return an error.

// OnRunStartCallback is called once the run id is known and warm-up is satisfied.
// totalBars is the number of bars the loop will visit.
type OnRunStartCallback func(runID string, strategyName string, totalBars int) error

// OnRunEndCallback is called when a run finishes, including insufficient-data runs.
type OnRunEndCallback func(runID string, result *types.Result)

// OnProcessDataCallback is called for each bar processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnRunEnd      *OnRunEndCallback
	OnProcessData *OnProcessDataCallback
}

// RunOptions tune a single Run call.
type RunOptions struct {
	// Symbol is copied into the result.
	Symbol string
	// ReturnSeries keeps the per-bar equity and benchmark series on the result.
	ReturnSeries bool
	Callbacks    LifecycleCallbacks
}

type Engine interface {
	// Run replays the frame bar by bar against the strategy.
	// The context can be used to cancel the run between bars.
	// Too few bars is reported through Result.Error, not the returned error.
	Run(ctx context.Context, frame *indicator.Frame, strategy strategy.Strategy, opts RunOptions) (*types.Result, error)
	// Config returns the effective configuration.
	Config() Config
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
