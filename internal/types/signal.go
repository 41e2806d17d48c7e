package types

import "time"

// Action is the discrete instruction carried by a Signal.
type Action string

const (
	ActionBuy   Action = "buy"
	ActionSell  Action = "sell"
	ActionHold  Action = "hold"
	ActionClose Action = "close"
)

// Reason is a categorical code explaining why a signal was produced.
type Reason string

const (
	ReasonInsufficientData  Reason = "insufficient_data"
	ReasonMissingIndicators Reason = "missing_indicators"
	ReasonNoSignal          Reason = "no_signal"
	ReasonExtremeMarket     Reason = "extreme_market"

	// RSI composite
	ReasonGoldenCross       Reason = "golden_cross"
	ReasonDeathCross        Reason = "death_cross"
	ReasonOverbought        Reason = "overbought"
	ReasonStrongOverbought  Reason = "strong_overbought"
	ReasonOversold          Reason = "oversell"
	ReasonStrongOversold    Reason = "strong_oversell"
	ReasonTrendPullback     Reason = "trend_pullback"
	ReasonTrendBounceSell   Reason = "trend_bounce_sell"
	ReasonBullishDivergence Reason = "bullish_divergence"
	ReasonBearishDivergence Reason = "bearish_divergence"
	ReasonCloseShortCooled  Reason = "close_short_rsi_cooled"
	ReasonCloseLongRecover  Reason = "close_long_rsi_recovered"

	// EMA family
	ReasonHold                 Reason = "hold"
	ReasonMonthlyRebalanceBull Reason = "monthly_rebalance_bull"
	ReasonMonthlyRebalanceBear Reason = "monthly_rebalance_bear"
	ReasonHoldUntilMonthEnd    Reason = "hold_until_month_end"
	ReasonUptrendLowVol        Reason = "uptrend_low_vol"
	ReasonNoUptrendOrHighVol   Reason = "no_uptrend_or_high_vol"
	ReasonTrendConfirmed       Reason = "trend_confirmed"
	ReasonTrendHighVol         Reason = "trend_high_vol"
	ReasonTrendWeak            Reason = "trend_weak"
	ReasonNoUptrend            Reason = "no_uptrend"

	// MA50 + volume + RSI table
	ReasonBullPullbackVolumeOK     Reason = "bull_pullback_volume_ok"
	ReasonBullOverboughtVolumeWeak Reason = "bull_overbought_volume_weak"
	ReasonBullOverboughtVolumeOK   Reason = "bull_overbought_volume_ok"
	ReasonBullHold                 Reason = "bull_hold"
	ReasonBearRallyVolumeHeavy     Reason = "bear_rally_volume_heavy"
	ReasonBearOversoldVolumeLight  Reason = "bear_oversold_volume_light"
	ReasonBearOversoldNoBottom     Reason = "bear_oversold_no_bottom"
	ReasonBearHold                 Reason = "bear_hold"
	ReasonOscSell                  Reason = "osc_sell"
	ReasonOscBuy                   Reason = "osc_buy"
	ReasonOscHold                  Reason = "osc_hold"
	ReasonTransition               Reason = "transition"
)

// TrendType labels the trend branch a strategy evaluated, when it has one.
type TrendType string

const (
	TrendUp         TrendType = "up"
	TrendDown       TrendType = "down"
	TrendOscillate  TrendType = "oscillate"
	TrendTransition TrendType = "transition"
)

// Signal is a strategy's decision for one bar.
// TargetPosition is the signed fraction of capital, in [-1, 1].
type Signal struct {
	Time           time.Time `yaml:"time" json:"time"`
	Action         Action    `yaml:"action" json:"action"`
	TargetPosition float64   `yaml:"target_position" json:"target_position"`
	Reason         Reason    `yaml:"reason" json:"reason"`
	TrendType      TrendType `yaml:"trend_type,omitempty" json:"trend_type,omitempty"`
}

// HoldSignal is the neutral signal used for warm-up and degenerate inputs.
func HoldSignal(t time.Time, reason Reason) Signal {
	return Signal{
		Time:           t,
		Action:         ActionHold,
		TargetPosition: 0,
		Reason:         reason,
		TrendType:      "",
	}
}

// Direction is the side of an open position.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// DirectionOf returns the side implied by a signed position size. Zero is reported as long.
func DirectionOf(size float64) Direction {
	if size < 0 {
		return DirectionShort
	}

	return DirectionLong
}

// PositionContext describes the already open position passed back to a strategy.
type PositionContext struct {
	Direction   Direction `yaml:"direction" json:"direction"`
	EntryReason Reason    `yaml:"entry_reason" json:"entry_reason"`
	// Size is the signed fraction currently held.
	Size float64 `yaml:"size" json:"size"`
}

// RiskLevels are the protective prices computed when a position is opened.
type RiskLevels struct {
	StopLoss   float64 `yaml:"stop_loss" json:"stop_loss"`
	TakeProfit float64 `yaml:"take_profit" json:"take_profit"`
}
