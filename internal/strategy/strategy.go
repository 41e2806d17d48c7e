// Package strategy defines the signal/risk contract driven by the backtest
// engine and the closed set of strategy variants behind it.
package strategy

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// Strategy decides a target position for the last bar of a window and prices
// the stop and take levels that protect it. Implementations must not mutate
// the window.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string
	// WarmupBars is the number of bars needed before signals are meaningful.
	// Backtests with no more bars than this report insufficient data.
	WarmupBars() int
	// Indicators lists the columns the strategy reads.
	Indicators() []indicator.Column
	// GenerateSignal returns the decision for window.Last(). current carries
	// the open position, if any.
	GenerateSignal(window *indicator.Frame, current optional.Option[types.PositionContext]) types.Signal
	// CalculateRisk prices stop/take levels from the last close of window.
	CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels
}

// Registered strategy names.
const (
	NameEMACrossV1       = "EMA_cross_v1"
	NameEMATrendV2       = "EMA_trend_v2"
	NameEMATrendV3       = "EMA_trend_v3"
	NameNDXShortTerm     = "NDX_short_term"
	NameNDXMA50VolumeRSI = "NDX_MA50_Volume_RSI"
)

func validateConfig(name string, cfg any) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid %s configuration", name)
	}

	return nil
}

func columnNames(columns []indicator.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}

	return names
}

// precheck returns a hold signal when the window is too short or lacks a column.
func precheck(window *indicator.Frame, warmup int, columns []indicator.Column) (types.Signal, bool) {
	if window.Len() == 0 {
		return types.HoldSignal(time.Time{}, types.ReasonInsufficientData), false
	}

	if window.Len() < warmup {
		return types.HoldSignal(window.Last().Time, types.ReasonInsufficientData), false
	}

	if missing := window.Missing(columnNames(columns)...); len(missing) > 0 {
		return types.HoldSignal(window.Last().Time, types.ReasonMissingIndicators), false
	}

	return types.Signal{}, true
}

// heldSize is the signed size of the open position, zero when flat.
func heldSize(current optional.Option[types.PositionContext]) float64 {
	if current.IsNone() {
		return 0
	}

	return current.Unwrap().Size
}

func decision(t time.Time, position float64, reason types.Reason) types.Signal {
	action := types.ActionHold

	switch {
	case position > 0:
		action = types.ActionBuy
	case position < 0:
		action = types.ActionSell
	}

	return types.Signal{Time: t, Action: action, TargetPosition: position, Reason: reason}
}

// exitDecision is a sell to flat.
func exitDecision(t time.Time, reason types.Reason) types.Signal {
	return types.Signal{Time: t, Action: types.ActionSell, TargetPosition: 0, Reason: reason}
}
