package indicator

// SMA is the simple moving average over period values, NaN before period-1.
func SMA(values []float64, period int) Series {
	return RollingMean(values, period)
}
