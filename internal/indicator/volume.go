package indicator

import "math"

// VolumeRatio is volume / SMA(volume, period). A zero mean is clamped to
// Epsilon. Values above maxRatio are capped when maxRatio > 0. NaN before period-1.
func VolumeRatio(volume []float64, period int, maxRatio float64) Series {
	mean := RollingMean(volume, period)
	out := NaNSeries(len(volume))

	for i, m := range mean {
		if !IsDefined(m) {
			continue
		}

		if m == 0 {
			m = Epsilon
		}

		r := volume[i] / m
		if maxRatio > 0 {
			r = math.Min(r, maxRatio)
		}

		out[i] = r
	}

	return out
}

// Volatility is the rolling sample standard deviation of simple returns over
// period returns. The first defined value is at index period.
func Volatility(close []float64, period int) Series {
	return RollingStd(PctChange(close), period)
}
