package indicator

import "math"

// Epsilon replaces zero denominators.
const Epsilon = 1e-10

// Series is a column aligned with the bar sequence. NaN marks positions
// without enough history.
type Series []float64

// NaNSeries returns a series of n NaN values.
func NaNSeries(n int) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// IsDefined reports whether v is a usable number.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Last returns the final value or NaN for an empty series.
func (s Series) Last() float64 {
	return s.At(len(s) - 1)
}

// At returns s[i] or NaN when i is out of range.
func (s Series) At(i int) float64 {
	if i < 0 || i >= len(s) {
		return math.NaN()
	}

	return s[i]
}

// Tail returns the last n values, or all of them if fewer exist.
func (s Series) Tail(n int) Series {
	if n >= len(s) {
		return s
	}

	return s[len(s)-n:]
}

// RollingMean is the simple mean over window values. Windows containing NaN yield NaN.
func RollingMean(values []float64, window int) Series {
	out := NaNSeries(len(values))
	if window <= 0 {
		return out
	}

	sum := 0.0
	bad := 0

	for i, v := range values {
		if IsDefined(v) {
			sum += v
		} else {
			bad++
		}

		if i >= window {
			old := values[i-window]
			if IsDefined(old) {
				sum -= old
			} else {
				bad--
			}
		}

		if i >= window-1 && bad == 0 {
			out[i] = sum / float64(window)
		}
	}

	return out
}

// RollingStd is the sample standard deviation (n-1) over window values.
func RollingStd(values []float64, window int) Series {
	out := NaNSeries(len(values))
	if window < 2 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		if sd, ok := sampleStd(values[i-window+1 : i+1]); ok {
			out[i] = sd
		}
	}

	return out
}

func sampleStd(values []float64) (float64, bool) {
	n := float64(len(values))
	if n < 2 {
		return 0, false
	}

	mean := 0.0

	for _, v := range values {
		if !IsDefined(v) {
			return 0, false
		}

		mean += v
	}

	mean /= n

	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}

	return math.Sqrt(ss / (n - 1)), true
}

// StdDev is the sample standard deviation of values, zero for fewer than two values.
func StdDev(values []float64) float64 {
	sd, ok := sampleStd(values)
	if !ok {
		return 0
	}

	return sd
}

// PctChange returns (v[i] - v[i-1]) / v[i-1]; the first value is NaN.
func PctChange(values []float64) Series {
	out := NaNSeries(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 && IsDefined(values[i-1]) && IsDefined(values[i]) {
			out[i] = values[i]/values[i-1] - 1
		}
	}

	return out
}

// LinearSlope is the least squares slope of values against 0..n-1.
func LinearSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	meanX := (n - 1) / 2
	meanY := 0.0

	for _, v := range values {
		meanY += v
	}

	meanY /= n

	num, den := 0.0, 0.0

	for i, v := range values {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}

	return num / den
}
