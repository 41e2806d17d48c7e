// Package report renders signal reports and backtest summaries and exports
// the daily series of a run.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

const ruleWidth = 55

// derivations explain the common reason codes in one line.
var derivations = map[types.Reason]string{
	types.ReasonNoSignal:          "RSI, moving averages and volume triggered nothing, stay on the sidelines",
	types.ReasonGoldenCross:       "short RSI crossed above long RSI with volume confirmation, add exposure",
	types.ReasonDeathCross:        "short RSI crossed below long RSI, reduce or go flat",
	types.ReasonOverbought:        "RSI overbought for the regime, reduce or wait",
	types.ReasonStrongOverbought:  "RSI strongly overbought, reduce",
	types.ReasonOversold:          "RSI oversold for the regime, consider adding",
	types.ReasonStrongOversold:    "RSI strongly oversold, consider adding",
	types.ReasonBullishDivergence: "bullish divergence between price and RSI",
	types.ReasonBearishDivergence: "bearish divergence between price and RSI",
	types.ReasonTrendPullback:     "pullback in an uptrend with volume support, light long",
	types.ReasonTrendBounceSell:   "bounce rejected in a downtrend, reduce",
	types.ReasonCloseShortCooled:  "RSI cooled off, close the short",
	types.ReasonCloseLongRecover:  "RSI recovered, close the long",
	types.ReasonExtremeMarket:     "extreme market conditions, stand aside",
	types.ReasonInsufficientData:  "not enough data to produce a signal",
	types.ReasonMissingIndicators: "required indicator columns are missing",

	types.ReasonHold:                 "no crossover, keep the current position",
	types.ReasonMonthlyRebalanceBull: "month-end rebalance with the fast EMA above the slow EMA, go long",
	types.ReasonMonthlyRebalanceBear: "month-end rebalance with the fast EMA below the slow EMA, go flat",
	types.ReasonHoldUntilMonthEnd:    "not a rebalance day, keep the current position",
	types.ReasonUptrendLowVol:        "uptrend with low volatility, hold fully",
	types.ReasonNoUptrendOrHighVol:   "no uptrend or volatility too high, stay flat",
	types.ReasonTrendConfirmed:       "trend confirmed by SMA, ADX and MACD, hold fully",
	types.ReasonTrendHighVol:         "trend confirmed but volatility is high, hold partially",
	types.ReasonTrendWeak:            "ADX too low, trend not confirmed",
	types.ReasonNoUptrend:            "no uptrend",

	types.ReasonBullPullbackVolumeOK:     "bull market pullback with healthy volume, buy",
	types.ReasonBullOverboughtVolumeWeak: "bull market overbought on weak volume, trim",
	types.ReasonBullOverboughtVolumeOK:   "bull market overbought with volume support, hold",
	types.ReasonBullHold:                 "bull market, hold",
	types.ReasonBearRallyVolumeHeavy:     "bear market rally on heavy volume, sell",
	types.ReasonBearOversoldVolumeLight:  "bear market oversold on light volume, small rebound position",
	types.ReasonBearOversoldNoBottom:     "bear market oversold without a bottom, wait",
	types.ReasonBearHold:                 "bear market, stay defensive",
	types.ReasonOscSell:                  "range top, sell",
	types.ReasonOscBuy:                   "range bottom, buy",
	types.ReasonOscHold:                  "inside the range, hold",
	types.ReasonTransition:               "regime in transition, stay light",
}

// Derivation explains reason, falling back to the raw code.
func Derivation(reason types.Reason) string {
	if d, ok := derivations[reason]; ok {
		return d
	}

	if reason == "" {
		return "-"
	}

	return "reason: " + string(reason)
}

// ActionFromPosition turns a target position into advice.
func ActionFromPosition(position float64) string {
	switch {
	case position >= 0.99:
		return "fully long"
	case position > 0:
		return fmt.Sprintf("partially long (%.0f%%)", position*100)
	case position <= -0.99:
		return "fully short"
	case position < 0:
		return fmt.Sprintf("light short (%.0f%%)", position*100)
	default:
		return "flat, wait"
	}
}

// FormatValue prints a number the way reports show it. NaN is N/A.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}

	if a := math.Abs(v); a != 0 && (a < 1e-4 || a >= 1e4) {
		return fmt.Sprintf("%.4g", v)
	}

	return fmt.Sprintf("%.2f", v)
}

// SignalReport renders the latest decision of s on frame as plain text,
// suitable for the terminal and for chat webhooks.
func SignalReport(s strategy.Strategy, symbol string, frame *indicator.Frame, sig types.Signal, levels types.RiskLevels) string {
	rule := strings.Repeat("=", ruleWidth)

	if frame == nil || frame.Len() == 0 {
		return "[no data] cannot build a report"
	}

	last := frame.Last()

	lines := []string{
		rule,
		fmt.Sprintf("[%s %s signal - %s]", symbol, s.Name(), last.Time.Format(time.DateOnly)),
		fmt.Sprintf("  Close: %s", FormatValue(last.Close)),
	}

	for _, c := range s.Indicators() {
		lines = append(lines, fmt.Sprintf("  %s: %s", c.Name(), FormatValue(frame.Value(c.Name()))))
	}

	if sig.TrendType != "" {
		lines = append(lines, fmt.Sprintf("  Trend: %s", sig.TrendType))
	}

	lines = append(lines,
		fmt.Sprintf("  Derivation: %s", Derivation(sig.Reason)),
		fmt.Sprintf("  Advice: %s", ActionFromPosition(sig.TargetPosition)),
	)

	if levels.StopLoss != 0 && levels.StopLoss != last.Close {
		lines = append(lines, fmt.Sprintf("  Stop loss: %.2f", levels.StopLoss))
	}

	if levels.TakeProfit != 0 && levels.TakeProfit != last.Close {
		lines = append(lines, fmt.Sprintf("  Take profit: %.2f", levels.TakeProfit))
	}

	lines = append(lines, rule)

	return strings.Join(lines, "\n")
}
