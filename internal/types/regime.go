package types

// Regime is the coarse directional character of the market.
type Regime string

const (
	RegimeBull       Regime = "bull"
	RegimeBear       Regime = "bear"
	RegimeOscillate  Regime = "oscillate"
	RegimeTransition Regime = "transition"
)

// RSIThresholds are the regime dependent RSI levels used by the signal layer.
type RSIThresholds struct {
	Overbought       float64 `yaml:"overbought" json:"overbought"`
	StrongOverbought float64 `yaml:"strong_overbought" json:"strong_overbought"`
	Oversold         float64 `yaml:"oversold" json:"oversold"`
	StrongOversold   float64 `yaml:"strong_oversold" json:"strong_oversold"`
}
