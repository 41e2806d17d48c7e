// Package regime classifies the market environment from the close series and
// its 50-bar moving average, and maps each environment to RSI thresholds.
package regime

import (
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

const (
	// SlopeLookback is the number of MA values the trend line is fitted to.
	SlopeLookback = 20
	// OscillateRange is the max distance of price from MA for an oscillating market.
	OscillateRange = 0.03

	SlopeUp       = 0.001
	SlopeDown     = -0.001
	SlopeFlatLow  = -0.005
	SlopeFlatHigh = 0.005

	tolerance = 1e-10
)

var thresholds = map[types.Regime]types.RSIThresholds{
	types.RegimeBull:       {Overbought: 80, StrongOverbought: 85, Oversold: 40, StrongOversold: 35},
	types.RegimeBear:       {Overbought: 60, StrongOverbought: 65, Oversold: 20, StrongOversold: 15},
	types.RegimeOscillate:  {Overbought: 65, StrongOverbought: 70, Oversold: 35, StrongOversold: 30},
	types.RegimeTransition: {Overbought: 70, StrongOverbought: 75, Oversold: 30, StrongOversold: 25},
}

// Classify returns bull, bear, oscillate or transition for the last bar.
// close and ma50 must be aligned. Transition is returned whenever the inputs
// are too short or contain undefined or non-positive MA values.
func Classify(close, ma50 []float64) types.Regime {
	if len(close) < SlopeLookback || len(ma50) < SlopeLookback {
		return types.RegimeTransition
	}

	ma := ma50[len(ma50)-SlopeLookback:]
	for _, v := range ma {
		if !indicator.IsDefined(v) {
			return types.RegimeTransition
		}
	}

	lastTwoClose := close[len(close)-2:]
	lastTwoMA := ma50[len(ma50)-2:]

	if lastTwoMA[0] <= 0 || lastTwoMA[1] <= 0 {
		return types.RegimeTransition
	}

	slopePct := NormalizedSlope(ma)
	bothAbove := lastTwoClose[0] >= lastTwoMA[0]-tolerance && lastTwoClose[1] >= lastTwoMA[1]-tolerance
	bothBelow := lastTwoClose[0] <= lastTwoMA[0]+tolerance && lastTwoClose[1] <= lastTwoMA[1]+tolerance

	if slopePct > SlopeUp && bothAbove {
		return types.RegimeBull
	}

	if slopePct < SlopeDown && bothBelow {
		return types.RegimeBear
	}

	lastClose := lastTwoClose[1]
	lastMA := lastTwoMA[1]
	diffPct := (lastClose - lastMA) / lastMA

	if slopePct >= SlopeFlatLow && slopePct <= SlopeFlatHigh && abs(diffPct) <= OscillateRange {
		return types.RegimeOscillate
	}

	return types.RegimeTransition
}

// ClassifyFrame classifies the last bar of a frame using its ma50 column.
func ClassifyFrame(f *indicator.Frame) types.Regime {
	ma50, ok := f.Column("ma50")
	if !ok {
		return types.RegimeTransition
	}

	return Classify(f.Closes(), ma50)
}

// Thresholds returns the RSI threshold table for a regime. Unknown regimes use transition.
func Thresholds(r types.Regime) types.RSIThresholds {
	if t, ok := thresholds[r]; ok {
		return t
	}

	return thresholds[types.RegimeTransition]
}

// NormalizedSlope is the least squares slope of values divided by the last value.
func NormalizedSlope(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return indicator.LinearSlope(values) / (values[len(values)-1] + indicator.Epsilon)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
