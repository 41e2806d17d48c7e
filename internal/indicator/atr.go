package indicator

import "math"

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|). The first bar uses high-low.
func TrueRange(high, low, close []float64) Series {
	out := make(Series, len(close))
	for i := range close {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-close[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-close[i-1]))
		}

		out[i] = tr
	}

	return out
}

// ATR is the Wilder-smoothed average true range.
func ATR(high, low, close []float64, period int) Series {
	return WilderSmooth(TrueRange(high, low, close), period)
}

// WilderSmooth seeds with the mean of the first period defined values, then
// applies prev + (x - prev)/period. Undefined inputs after the seed hold the
// previous value.
func WilderSmooth(values []float64, period int) Series {
	out := NaNSeries(len(values))
	if period <= 0 {
		return out
	}

	start := -1

	for i, v := range values {
		if IsDefined(v) {
			start = i

			break
		}
	}

	if start < 0 || start+period > len(values) {
		return out
	}

	seed := 0.0

	for i := start; i < start+period; i++ {
		if IsDefined(values[i]) {
			seed += values[i]
		}
	}

	prev := seed / float64(period)
	out[start+period-1] = prev

	for i := start + period; i < len(values); i++ {
		if IsDefined(values[i]) {
			prev += (values[i] - prev) / float64(period)
		}

		out[i] = prev
	}

	return out
}
