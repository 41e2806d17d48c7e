package indicator

import "math"

// ADX is Wilder's average directional index. Directional movement and true
// range are Wilder-smoothed over period, DX is smoothed again over period, so
// the first defined value sits at index 2*period-1.
func ADX(high, low, close []float64, period int) Series {
	n := len(close)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]

		if up > down && up > 0 {
			plusDM[i] = up
		}

		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// skip bar 0, it has no movement
	tr := TrueRange(high, low, close)
	tr[0] = math.NaN()
	plusDM[0] = math.NaN()
	minusDM[0] = math.NaN()

	atr := WilderSmooth(tr, period)
	plus := WilderSmooth(plusDM, period)
	minus := WilderSmooth(minusDM, period)

	dx := NaNSeries(n)

	for i := range n {
		if !IsDefined(atr[i]) {
			continue
		}

		if atr[i] == 0 {
			dx[i] = 0

			continue
		}

		plusDI := 100 * plus[i] / atr[i]
		minusDI := 100 * minus[i] / atr[i]
		sum := plusDI + minusDI

		if sum == 0 {
			dx[i] = 0

			continue
		}

		dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
	}

	return WilderSmooth(dx, period)
}
