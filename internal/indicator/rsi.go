package indicator

import (
	"math"

	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// NeutralRSI fills the warm-up region so downstream rules read it as "no signal".
const NeutralRSI = 50.0

// RSI computes 100 - 100/(1+RS) where RS is the simple mean of gains over the
// simple mean of losses across the last period price changes. A zero average
// loss is clamped to Epsilon, so a strictly rising series approaches but never
// exceeds 100. The first bar counts as an unchanged close, so the first
// period-1 values are NeutralRSI.
func RSI(close []float64, period int) Series {
	out := make(Series, len(close))
	for i := range out {
		out[i] = NeutralRSI
	}

	if period <= 0 {
		return out
	}

	gains := make([]float64, len(close))
	losses := make([]float64, len(close))

	for i := 1; i < len(close); i++ {
		change := close[i] - close[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGain := RollingMean(gains, period)
	avgLoss := RollingMean(losses, period)

	for i := period - 1; i < len(close); i++ {
		g := avgGain[i]
		l := avgLoss[i]

		if !IsDefined(g) || !IsDefined(l) {
			continue
		}

		if l == 0 {
			l = Epsilon
		}

		rs := g / l
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// WilderRSI is the classic Wilder-smoothed RSI used as a reference when
// verifying RSI. Values before period are NaN.
func WilderRSI(close []float64, period int) Series {
	out := NaNSeries(len(close))
	if period <= 0 || len(close) <= period {
		return out
	}

	avgGain, avgLoss := 0.0, 0.0

	for i := 1; i <= period; i++ {
		change := close[i] - close[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(close); i++ {
		change := close[i] - close[i-1]
		gain, loss := 0.0, 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}

// VerifyRSI reports the largest absolute gap between RSI and WilderRSI over the
// positions where both are defined, and whether it stays within maxDiff. A
// series without a defined position is an InsufficientDataError.
func VerifyRSI(close []float64, period int, maxDiff float64) (float64, bool, error) {
	if len(close) <= period {
		return 0, false, errors.NewInsufficientDataErrorf(period+1, len(close), "",
			"%s: RSI(%d) needs %d closes, got %d", types.ErrInsufficientData, period, period+1, len(close))
	}

	simple := RSI(close, period)
	wilder := WilderRSI(close, period)
	worst := 0.0

	for i := range close {
		if i < period || !IsDefined(wilder[i]) {
			continue
		}

		worst = math.Max(worst, math.Abs(simple[i]-wilder[i]))
	}

	return worst, worst <= maxDiff, nil
}
