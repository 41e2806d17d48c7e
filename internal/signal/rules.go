// Package signal holds the RSI signal rules and the composite combiner used by
// the regime-aware RSI strategy.
package signal

import (
	"math"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// Cross entry bands on the midpoint of the two RSI lines.
const (
	GoldenMidMin = 30.0
	GoldenMidMax = 60.0
	DeathMidMin  = 40.0
	DeathMidMax  = 70.0

	crossMidCeiling = 70.0
	crossMidFloor   = 30.0
)

// OverboughtOversold compares the short RSI with the regime thresholds. At
// most one of the two returned reasons is non-empty; strong levels win.
func OverboughtOversold(rsiShort float64, th types.RSIThresholds) (overbought, oversold types.Reason) {
	if !indicator.IsDefined(rsiShort) {
		return "", ""
	}

	switch {
	case rsiShort >= th.StrongOverbought:
		return types.ReasonStrongOverbought, ""
	case rsiShort >= th.Overbought:
		return types.ReasonOverbought, ""
	case rsiShort <= th.StrongOversold:
		return "", types.ReasonStrongOversold
	case rsiShort <= th.Oversold:
		return "", types.ReasonOversold
	default:
		return "", ""
	}
}

// GoldenDeathCross detects the short RSI crossing the long RSI between the
// previous and current bar. A golden cross needs its midpoint in [30, 60] and
// close above ma5; a death cross needs [40, 70] and close below ma5. The ma5
// check is skipped when ma5 is undefined. Returns "" when nothing qualifies.
func GoldenDeathCross(shortCur, longCur, shortPrev, longPrev, close, ma5 float64) types.Reason {
	for _, v := range []float64{shortCur, longCur, shortPrev, longPrev} {
		if !indicator.IsDefined(v) {
			return ""
		}
	}

	golden := shortPrev < longPrev && shortCur > longCur
	death := shortPrev > longPrev && shortCur < longCur
	mid := (shortCur + longCur) / 2
	confirm := indicator.IsDefined(ma5) && indicator.IsDefined(close)

	if golden {
		if mid > crossMidCeiling {
			return ""
		}

		if confirm && close <= ma5 {
			return ""
		}

		if mid >= GoldenMidMin && mid <= GoldenMidMax {
			return types.ReasonGoldenCross
		}
	}

	if death {
		if mid < crossMidFloor {
			return ""
		}

		if confirm && close >= ma5 {
			return ""
		}

		if mid >= DeathMidMin && mid <= DeathMidMax {
			return types.ReasonDeathCross
		}
	}

	return ""
}

// Divergence compares the most recent segment of n bars with the segment
// before it, n = min(5, lookback/3). A higher price high with a lower RSI
// high is bearish; a lower price low with a higher RSI low is bullish.
func Divergence(prices, rsi []float64, lookback int) types.Reason {
	if len(prices) < lookback || len(rsi) < lookback {
		return ""
	}

	n := min(5, lookback/3)
	if n < 2 || len(prices) < 2*n || len(rsi) < 2*n {
		return ""
	}

	recentP := prices[len(prices)-n:]
	prevP := prices[len(prices)-2*n : len(prices)-n]
	recentR := rsi[len(rsi)-n:]
	prevR := rsi[len(rsi)-2*n : len(rsi)-n]

	if maxOf(recentP) > maxOf(prevP) && maxOf(recentR) < maxOf(prevR) {
		return types.ReasonBearishDivergence
	}

	if minOf(recentP) < minOf(prevP) && minOf(recentR) > minOf(prevR) {
		return types.ReasonBullishDivergence
	}

	return ""
}

func maxOf(values []float64) float64 {
	out := math.Inf(-1)
	for _, v := range values {
		if indicator.IsDefined(v) {
			out = math.Max(out, v)
		}
	}

	return out
}

func minOf(values []float64) float64 {
	out := math.Inf(1)
	for _, v := range values {
		if indicator.IsDefined(v) {
			out = math.Min(out, v)
		}
	}

	return out
}
