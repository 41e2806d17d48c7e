package signal

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/regime"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// CombineConfig names the input columns and tunes the combiner.
type CombineConfig struct {
	ShortRSIColumn string `yaml:"short_rsi_column" json:"short_rsi_column"`
	LongRSIColumn  string `yaml:"long_rsi_column" json:"long_rsi_column"`
	MA50Column     string `yaml:"ma50_column" json:"ma50_column"`
	MA5Column      string `yaml:"ma5_column" json:"ma5_column"`
	VolumeColumn   string `yaml:"volume_column" json:"volume_column"`

	// VolumeConfirm is the minimum volume ratio for crosses and bearish rallies.
	VolumeConfirm float64 `yaml:"volume_confirm" json:"volume_confirm" validate:"gt=0"`
	// CrossPosition is the size taken on a confirmed cross.
	CrossPosition float64 `yaml:"cross_position" json:"cross_position" validate:"gt=0,lte=1"`
	// RegimeGateCross blocks golden crosses in a bear market and death crosses in a bull market.
	RegimeGateCross bool `yaml:"regime_gate_cross" json:"regime_gate_cross"`
	TrendLookback   int  `yaml:"trend_lookback" json:"trend_lookback" validate:"gte=2"`

	UseDivergence      bool    `yaml:"use_divergence" json:"use_divergence"`
	DivergenceLookback int     `yaml:"divergence_lookback" json:"divergence_lookback" validate:"gte=6"`
	DivergencePosition float64 `yaml:"divergence_position" json:"divergence_position" validate:"gt=0,lte=1"`

	// CloseShortBelow closes a short opened on overbought once the short RSI drops below it.
	CloseShortBelow float64 `yaml:"close_short_below" json:"close_short_below" validate:"gte=0,lte=100"`
	// CloseLongAbove closes a long opened on oversold once the short RSI rises above it.
	CloseLongAbove float64 `yaml:"close_long_above" json:"close_long_above" validate:"gte=0,lte=100"`
}

// DefaultCombineConfig returns the standard rsi_9/rsi_24 setup.
func DefaultCombineConfig() CombineConfig {
	return CombineConfig{
		ShortRSIColumn:     "rsi_9",
		LongRSIColumn:      "rsi_24",
		MA50Column:         "ma50",
		MA5Column:          "ma5",
		VolumeColumn:       "volume_ratio",
		VolumeConfirm:      1.2,
		CrossPosition:      0.4,
		RegimeGateCross:    true,
		TrendLookback:      regime.TrendLookback,
		UseDivergence:      false,
		DivergenceLookback: 20,
		DivergencePosition: 0.2,
		CloseShortBelow:    65,
		CloseLongAbove:     35,
	}
}

// RequiredColumns lists the columns Combine cannot work without.
func (c CombineConfig) RequiredColumns() []string {
	return []string{c.ShortRSIColumn, c.LongRSIColumn, c.MA50Column, c.VolumeColumn}
}

// CloseCondition decides whether an open position should be closed on this
// bar because the RSI extreme that opened it has faded.
func CloseCondition(window *indicator.Frame, cfg CombineConfig, current optional.Option[types.PositionContext]) (types.Signal, bool) {
	if current.IsNone() || window.Len() == 0 {
		return types.Signal{}, false
	}

	pos := current.Unwrap()
	rsiShort := window.Value(cfg.ShortRSIColumn)

	if !indicator.IsDefined(rsiShort) {
		return types.Signal{}, false
	}

	t := window.Last().Time

	switch pos.Direction {
	case types.DirectionShort:
		if (pos.EntryReason == types.ReasonOverbought || pos.EntryReason == types.ReasonStrongOverbought) && rsiShort < cfg.CloseShortBelow {
			return closeSignal(t, types.ReasonCloseShortCooled), true
		}
	case types.DirectionLong:
		if (pos.EntryReason == types.ReasonOversold || pos.EntryReason == types.ReasonStrongOversold) && rsiShort > cfg.CloseLongAbove {
			return closeSignal(t, types.ReasonCloseLongRecover), true
		}
	}

	return types.Signal{}, false
}

// Combine produces the composite RSI signal for the last bar of window.
// Priority: close condition, volume-confirmed cross, regime OB/OS with trend
// and volume modulation, optional divergence, then a flat no_signal.
func Combine(window *indicator.Frame, env types.Regime, cfg CombineConfig, current optional.Option[types.PositionContext]) types.Signal {
	if window.Len() < 2 {
		return types.HoldSignal(lastTime(window), types.ReasonInsufficientData)
	}

	if missing := window.Missing(cfg.RequiredColumns()...); len(missing) > 0 {
		return types.HoldSignal(lastTime(window), types.ReasonMissingIndicators)
	}

	if sig, ok := CloseCondition(window, cfg, current); ok {
		return sig
	}

	t := window.Last().Time
	shortRSI, _ := window.Column(cfg.ShortRSIColumn)
	longRSI, _ := window.Column(cfg.LongRSIColumn)
	ma50, _ := window.Column(cfg.MA50Column)
	closes := window.Closes()

	rsiS := shortRSI.Last()
	rsiL := longRSI.Last()
	volRatio := window.Value(cfg.VolumeColumn)

	if !indicator.IsDefined(volRatio) {
		volRatio = 1.0
	}

	trend := regime.ClassifyTrend(closes, ma50, cfg.TrendLookback)
	volType := regime.ClassifyVolume(volRatio)
	ob, os := OverboughtOversold(rsiS, regime.Thresholds(env))

	cross := GoldenDeathCross(rsiS, rsiL, shortRSI.At(len(shortRSI)-2), longRSI.At(len(longRSI)-2), closes.Last(), window.Value(cfg.MA5Column))
	if cfg.RegimeGateCross {
		if cross == types.ReasonGoldenCross && env == types.RegimeBear {
			cross = ""
		}

		if cross == types.ReasonDeathCross && env == types.RegimeBull {
			cross = ""
		}
	}

	if cross != "" && volRatio >= cfg.VolumeConfirm {
		if cross == types.ReasonGoldenCross {
			return entry(t, cfg.CrossPosition, cross)
		}

		return entry(t, -cfg.CrossPosition, cross)
	}

	switch trend {
	case regime.TrendUp:
		switch {
		case os != "" && volType.Contracting():
			return entry(t, 0.3, os)
		case rsiS >= 45 && rsiS <= 55 && volType.Contracting():
			return entry(t, 0.2, types.ReasonTrendPullback)
		case ob != "" && volType.Contracting():
			return entry(t, -0.2, ob)
		}
	case regime.TrendDown:
		switch {
		case ob != "" && volRatio >= cfg.VolumeConfirm:
			return entry(t, -0.3, ob)
		case rsiS >= 50 && rsiS <= 60 && volRatio >= cfg.VolumeConfirm:
			return entry(t, -0.2, types.ReasonTrendBounceSell)
		case os != "" && volType.Contracting():
			return entry(t, 0.3, os)
		}
	default:
		switch {
		case ob != "":
			return entry(t, -0.3, ob)
		case os != "":
			return entry(t, 0.3, os)
		}
	}

	if cfg.UseDivergence {
		div := Divergence(closes, shortRSI, cfg.DivergenceLookback)

		switch {
		case div == types.ReasonBearishDivergence && (trend != regime.TrendUp || volType.Contracting()):
			return entry(t, -cfg.DivergencePosition, div)
		case div == types.ReasonBullishDivergence && (trend != regime.TrendDown || volType.Contracting()):
			return entry(t, cfg.DivergencePosition, div)
		}
	}

	// nothing fired: target flat, so an open position is closed
	return types.HoldSignal(t, types.ReasonNoSignal)
}

func entry(t time.Time, position float64, reason types.Reason) types.Signal {
	action := types.ActionBuy
	if position < 0 {
		action = types.ActionSell
	}

	return types.Signal{
		Time:           t,
		Action:         action,
		TargetPosition: position,
		Reason:         reason,
	}
}

func closeSignal(t time.Time, reason types.Reason) types.Signal {
	return types.Signal{
		Time:           t,
		Action:         types.ActionClose,
		TargetPosition: 0,
		Reason:         reason,
	}
}

func lastTime(window *indicator.Frame) time.Time {
	if window.Len() == 0 {
		return time.Time{}
	}

	return window.Last().Time
}
