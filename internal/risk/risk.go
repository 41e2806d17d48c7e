// Package risk holds the entry veto, position caps and stop/take resolution
// shared by the strategies.
package risk

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/regime"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	VIXExtreme     = 30.0
	RSIExtremeLow  = 10.0
	RSIExtremeHigh = 90.0

	DefaultStopRatio          = 0.03
	DefaultLeveragedStopRatio = 0.05
	DefaultTakeRatio          = 0.07

	// DefaultRatioKey is the fallback entry of a per-reason ratio table.
	DefaultRatioKey = "default"
)

var regimeCaps = map[types.Regime]float64{
	types.RegimeBull:       0.8,
	types.RegimeBear:       0.3,
	types.RegimeOscillate:  0.5,
	types.RegimeTransition: 0.5,
}

// CheckExtremeMarket reports whether new entries must be blocked. With a VIX
// reading the block needs VIX > 30 and RSI < 10 or > 90. Without one the RSI
// extreme alone is enough.
func CheckExtremeMarket(vix, rsi optional.Option[float64]) bool {
	if rsi.IsNone() || !finite(rsi.Unwrap()) {
		return false
	}

	r := rsi.Unwrap()
	if r >= RSIExtremeLow && r <= RSIExtremeHigh {
		return false
	}

	if vix.IsNone() || !finite(vix.Unwrap()) {
		return true
	}

	return vix.Unwrap() > VIXExtreme
}

// DynamicCap tightens the regime cap when RSI sits at a strong extreme.
type DynamicCap struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// BullStrongOverboughtCap applies in a bull regime when RSI >= the strong overbought threshold.
	BullStrongOverboughtCap float64 `yaml:"bull_strong_overbought_cap" json:"bull_strong_overbought_cap" validate:"gte=0,lte=1"`
	// BearStrongOversoldCap applies in a bear regime when RSI <= the strong oversold threshold.
	BearStrongOversoldCap float64 `yaml:"bear_strong_oversold_cap" json:"bear_strong_oversold_cap" validate:"gte=0,lte=1"`
}

// RegimeCap returns the position ceiling for a regime.
func RegimeCap(r types.Regime) float64 {
	if c, ok := regimeCaps[r]; ok {
		return c
	}

	return regimeCaps[types.RegimeTransition]
}

// ApplyPositionCap clamps the magnitude of position to the regime ceiling,
// optionally tightened by dyn, keeping its sign.
func ApplyPositionCap(position float64, r types.Regime, rsi optional.Option[float64], dyn DynamicCap) float64 {
	limit := RegimeCap(r)

	if dyn.Enabled && rsi.IsSome() && finite(rsi.Unwrap()) {
		th := regime.Thresholds(r)
		v := rsi.Unwrap()

		switch {
		case r == types.RegimeBull && v >= th.StrongOverbought && dyn.BullStrongOverboughtCap > 0:
			limit = math.Min(limit, dyn.BullStrongOverboughtCap)
		case r == types.RegimeBear && v <= th.StrongOversold && dyn.BearStrongOversoldCap > 0:
			limit = math.Min(limit, dyn.BearStrongOversoldCap)
		}
	}

	if position > 0 {
		return math.Min(position, limit)
	}

	return math.Max(position, -limit)
}

// RatioTable maps a signal reason to a ratio. In YAML it is either a single
// number, stored under "default", or a mapping of reason to number.
type RatioTable map[string]float64

// UnmarshalYAML accepts a scalar or a mapping.
func (t *RatioTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}

		*t = RatioTable{DefaultRatioKey: v}

		return nil
	}

	var m map[string]float64
	if err := node.Decode(&m); err != nil {
		return err
	}

	*t = m

	return nil
}

// Ratios are stop/take distances as fractions of the entry close, keyed by
// signal reason with a "default" fallback entry.
type Ratios struct {
	StopLoss   RatioTable `yaml:"stop_loss_ratio" json:"stop_loss_ratio" validate:"dive,gt=0,lt=1"`
	TakeProfit RatioTable `yaml:"take_profit_ratio" json:"take_profit_ratio" validate:"dive,gt=0"`
	Leveraged  bool       `yaml:"is_leverage_etf" json:"is_leverage_etf"`
}

// FlatRatios builds a table holding only default entries.
func FlatRatios(stop, take float64, leveraged bool) Ratios {
	return Ratios{
		StopLoss:   RatioTable{DefaultRatioKey: stop},
		TakeProfit: RatioTable{DefaultRatioKey: take},
		Leveraged:  leveraged,
	}
}

// Resolve returns the stop and take ratios that apply to reason.
func (r Ratios) Resolve(reason types.Reason) (stop, take float64) {
	stop = DefaultStopRatio
	if r.Leveraged {
		stop = DefaultLeveragedStopRatio
	}

	take = DefaultTakeRatio

	if v, ok := lookup(r.StopLoss, reason); ok {
		stop = v
	}

	if v, ok := lookup(r.TakeProfit, reason); ok {
		take = v
	}

	return stop, take
}

func lookup(table RatioTable, reason types.Reason) (float64, bool) {
	if v, ok := table[string(reason)]; ok {
		return v, true
	}

	v, ok := table[DefaultRatioKey]

	return v, ok
}

// StopLossTakeProfit prices the stop and take levels for a position of the
// given signed size opened at close. A zero side yields {close, close}.
func StopLossTakeProfit(close, side float64, ratios Ratios, reason types.Reason) types.RiskLevels {
	stop, take := ratios.Resolve(reason)

	switch {
	case side > 0:
		return types.RiskLevels{StopLoss: close * (1 - stop), TakeProfit: close * (1 + take)}
	case side < 0:
		return types.RiskLevels{StopLoss: close * (1 + stop), TakeProfit: close * (1 - take)}
	default:
		return types.RiskLevels{StopLoss: close, TakeProfit: close}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
