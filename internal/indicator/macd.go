package indicator

// MACDResult holds the three MACD lines.
type MACDResult struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// MACD computes EMA(fast) - EMA(slow) of values, its EMA(signal) and the
// difference. Positions before slow-1 are NaN.
func MACD(values []float64, fast, slow, signal int) MACDResult {
	n := len(values)
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)
	line := NaNSeries(n)

	for i := slow - 1; i < n; i++ {
		if i >= 0 {
			line[i] = fastEMA[i] - slowEMA[i]
		}
	}

	sig := EMA(line, signal)
	hist := NaNSeries(n)

	for i := range n {
		if IsDefined(line[i]) && IsDefined(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}

	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}
