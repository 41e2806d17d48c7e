package indicator

import "fmt"

// Column computes one named series from a frame. Names are stable so that
// strategies can look them up after the engine attaches them.
type Column interface {
	Name() string
	Compute(f *Frame) Series
}

// RSIColumn is RSI over the close column, named rsi_<period>.
type RSIColumn struct {
	Period int
}

func (c RSIColumn) Name() string { return fmt.Sprintf("rsi_%d", c.Period) }

func (c RSIColumn) Compute(f *Frame) Series { return RSI(f.Closes(), c.Period) }

// SMAColumn is the simple moving average of close, named ma<period>.
type SMAColumn struct {
	Period int
}

func (c SMAColumn) Name() string { return fmt.Sprintf("ma%d", c.Period) }

func (c SMAColumn) Compute(f *Frame) Series { return SMA(f.Closes(), c.Period) }

// EMAColumn is the exponential moving average of close, named ema_<span>.
type EMAColumn struct {
	Span int
}

func (c EMAColumn) Name() string { return fmt.Sprintf("ema_%d", c.Span) }

func (c EMAColumn) Compute(f *Frame) Series { return EMA(f.Closes(), c.Span) }

// VolumeRatioColumn is named volume_ratio.
type VolumeRatioColumn struct {
	Period int
	Cap    float64
}

func (c VolumeRatioColumn) Name() string { return "volume_ratio" }

func (c VolumeRatioColumn) Compute(f *Frame) Series {
	v, _ := f.Column(ColumnVolume)

	return VolumeRatio(v, c.Period, c.Cap)
}

// ADXColumn is named adx_<period>.
type ADXColumn struct {
	Period int
}

func (c ADXColumn) Name() string { return fmt.Sprintf("adx_%d", c.Period) }

func (c ADXColumn) Compute(f *Frame) Series {
	h, _ := f.Column(ColumnHigh)
	l, _ := f.Column(ColumnLow)

	return ADX(h, l, f.Closes(), c.Period)
}

// MACDLineColumn is the MACD line, named macd_line.
type MACDLineColumn struct {
	Fast, Slow, Signal int
}

func (c MACDLineColumn) Name() string { return "macd_line" }

func (c MACDLineColumn) Compute(f *Frame) Series {
	return MACD(f.Closes(), c.Fast, c.Slow, c.Signal).Line
}

// VolatilityColumn is named vol_<period>.
type VolatilityColumn struct {
	Period int
}

func (c VolatilityColumn) Name() string { return fmt.Sprintf("vol_%d", c.Period) }

func (c VolatilityColumn) Compute(f *Frame) Series { return Volatility(f.Closes(), c.Period) }

// ATRColumn is named atr_<period>.
type ATRColumn struct {
	Period int
}

func (c ATRColumn) Name() string { return fmt.Sprintf("atr_%d", c.Period) }

func (c ATRColumn) Compute(f *Frame) Series {
	h, _ := f.Column(ColumnHigh)
	l, _ := f.Column(ColumnLow)

	return ATR(h, l, f.Closes(), c.Period)
}
