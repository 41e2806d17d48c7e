package indicator

// EMA is the exponential moving average with alpha = 2/(span+1), seeded with
// the first defined value (pandas ewm with adjust=false). Positions before the
// first defined input are NaN.
func EMA(values []float64, span int) Series {
	out := NaNSeries(len(values))
	if span <= 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1)
	seeded := false
	prev := 0.0

	for i, v := range values {
		if !IsDefined(v) {
			if seeded {
				out[i] = prev
			}

			continue
		}

		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}

		out[i] = prev
	}

	return out
}
