package strategy

import (
	"github.com/rxtech-lab/ndx-rsi/internal/risk"
	"github.com/rxtech-lab/ndx-rsi/internal/signal"
)

// Configs holds the configuration block of every strategy, keyed in YAML by
// strategy name.
type Configs struct {
	EMACrossV1       EMACrossV1Config       `yaml:"EMA_cross_v1" json:"EMA_cross_v1"`
	EMATrendV2       EMATrendV2Config       `yaml:"EMA_trend_v2" json:"EMA_trend_v2"`
	EMATrendV3       EMATrendV3Config       `yaml:"EMA_trend_v3" json:"EMA_trend_v3"`
	NDXShortTerm     NDXShortTermConfig     `yaml:"NDX_short_term" json:"NDX_short_term"`
	NDXMA50VolumeRSI NDXMA50VolumeRSIConfig `yaml:"NDX_MA50_Volume_RSI" json:"NDX_MA50_Volume_RSI"`
}

// DefaultConfigs returns every block at its defaults.
func DefaultConfigs() Configs {
	return Configs{
		EMACrossV1:       DefaultEMACrossV1Config(),
		EMATrendV2:       DefaultEMATrendV2Config(),
		EMATrendV3:       DefaultEMATrendV3Config(),
		NDXShortTerm:     DefaultNDXShortTermConfig(),
		NDXMA50VolumeRSI: DefaultNDXMA50VolumeRSIConfig(),
	}
}

// Rebalance frequencies for EMA_cross_v1.
const (
	RebalanceDaily   = "daily"
	RebalanceMonthly = "monthly"
)

// EMACrossV1Config configures the EMA crossover strategy.
type EMACrossV1Config struct {
	ShortEMA      int         `yaml:"short_ema" json:"short_ema" validate:"gt=0,ltfield=LongEMA"`
	LongEMA       int         `yaml:"long_ema" json:"long_ema" validate:"gt=0"`
	RebalanceFreq string      `yaml:"rebalance_freq" json:"rebalance_freq" validate:"oneof=daily monthly"`
	RiskControl   risk.Ratios `yaml:"risk_control" json:"risk_control"`
}

func DefaultEMACrossV1Config() EMACrossV1Config {
	return EMACrossV1Config{
		ShortEMA:      50,
		LongEMA:       200,
		RebalanceFreq: RebalanceDaily,
		RiskControl:   risk.FlatRatios(0.05, 0.20, false),
	}
}

// EMATrendV2Config configures the EMA trend + volatility filter strategy.
type EMATrendV2Config struct {
	EMAFast      int         `yaml:"ema_fast" json:"ema_fast" validate:"gt=0,ltfield=EMASlow"`
	EMASlow      int         `yaml:"ema_slow" json:"ema_slow" validate:"gt=0"`
	VolWindow    int         `yaml:"vol_window" json:"vol_window" validate:"gte=2"`
	VolThreshold float64     `yaml:"vol_threshold" json:"vol_threshold" validate:"gt=0"`
	RiskControl  risk.Ratios `yaml:"risk_control" json:"risk_control"`
}

func DefaultEMATrendV2Config() EMATrendV2Config {
	return EMATrendV2Config{
		EMAFast:      80,
		EMASlow:      200,
		VolWindow:    20,
		VolThreshold: 0.02,
		RiskControl:  risk.FlatRatios(0.05, 0.20, false),
	}
}

// EMATrendV3Config configures the multi-indicator trend strategy.
type EMATrendV3Config struct {
	EMAFast      int     `yaml:"ema_fast" json:"ema_fast" validate:"gt=0,ltfield=EMASlow"`
	EMASlow      int     `yaml:"ema_slow" json:"ema_slow" validate:"gt=0"`
	SMALong      int     `yaml:"sma_long" json:"sma_long" validate:"gt=0"`
	ADXPeriod    int     `yaml:"adx_period" json:"adx_period" validate:"gt=0"`
	ADXThreshold float64 `yaml:"adx_threshold" json:"adx_threshold" validate:"gte=0,lte=100"`
	MACDFast     int     `yaml:"macd_fast" json:"macd_fast" validate:"gt=0,ltfield=MACDSlow"`
	MACDSlow     int     `yaml:"macd_slow" json:"macd_slow" validate:"gt=0"`
	MACDSignal   int     `yaml:"macd_signal" json:"macd_signal" validate:"gt=0"`
	VolWindow    int     `yaml:"vol_window" json:"vol_window" validate:"gte=2"`
	VolThreshold float64 `yaml:"vol_threshold" json:"vol_threshold" validate:"gt=0"`
	// HighVolPosition is held while the trend is confirmed but volatility is high.
	HighVolPosition float64     `yaml:"high_vol_position" json:"high_vol_position" validate:"gte=0,lte=1"`
	RiskControl     risk.Ratios `yaml:"risk_control" json:"risk_control"`
}

func DefaultEMATrendV3Config() EMATrendV3Config {
	return EMATrendV3Config{
		EMAFast:         50,
		EMASlow:         200,
		SMALong:         200,
		ADXPeriod:       14,
		ADXThreshold:    25,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		VolWindow:       20,
		VolThreshold:    0.025,
		HighVolPosition: 0.5,
		RiskControl:     risk.FlatRatios(0.05, 0.20, false),
	}
}

// RSIParams are the short and long RSI periods.
type RSIParams struct {
	ShortPeriod int `yaml:"short_period" json:"short_period" validate:"gt=1,ltfield=LongPeriod"`
	LongPeriod  int `yaml:"long_period" json:"long_period" validate:"gt=1"`
}

// NDXShortTermConfig configures the regime-aware RSI composite strategy.
type NDXShortTermConfig struct {
	RSIParams   RSIParams            `yaml:"rsi_params" json:"rsi_params"`
	Signal      signal.CombineConfig `yaml:"signal" json:"signal"`
	PositionCap risk.DynamicCap      `yaml:"dynamic_position_cap" json:"dynamic_position_cap"`
	// VIXColumn is read for the extreme-market veto when the frame carries it.
	VIXColumn   string      `yaml:"vix_column" json:"vix_column"`
	RiskControl risk.Ratios `yaml:"risk_control" json:"risk_control"`
}

func DefaultNDXShortTermConfig() NDXShortTermConfig {
	return NDXShortTermConfig{
		RSIParams:   RSIParams{ShortPeriod: 9, LongPeriod: 24},
		Signal:      signal.DefaultCombineConfig(),
		PositionCap: risk.DynamicCap{Enabled: false, BullStrongOverboughtCap: 0.5, BearStrongOversoldCap: 0.2},
		VIXColumn:   "vix",
		RiskControl: risk.FlatRatios(0.03, 0.07, false),
	}
}

// NDXMA50VolumeRSIConfig configures the MA50 + volume + RSI14 trend table.
type NDXMA50VolumeRSIConfig struct {
	// SlopeFlatThreshold is the per-bar MA50 slope, in percent, below which the MA is flat.
	SlopeFlatThreshold float64     `yaml:"slope_flat_threshold" json:"slope_flat_threshold" validate:"gt=0"`
	OscillateRange     float64     `yaml:"oscillate_range" json:"oscillate_range" validate:"gt=0,lt=1"`
	VolRatioHeavy      float64     `yaml:"vol_ratio_heavy" json:"vol_ratio_heavy" validate:"gt=0"`
	VolRatioLight      float64     `yaml:"vol_ratio_light" json:"vol_ratio_light" validate:"gt=0,ltfield=VolRatioHeavy"`
	StopBelowMA50Pct   float64     `yaml:"stop_below_ma50_pct" json:"stop_below_ma50_pct" validate:"gte=0,lt=1"`
	StopBelowMA20Pct   float64     `yaml:"stop_below_ma20_pct" json:"stop_below_ma20_pct" validate:"gte=0,lt=1"`
	RiskControl        risk.Ratios `yaml:"risk_control" json:"risk_control"`
}

func DefaultNDXMA50VolumeRSIConfig() NDXMA50VolumeRSIConfig {
	return NDXMA50VolumeRSIConfig{
		SlopeFlatThreshold: 0.1,
		OscillateRange:     0.03,
		VolRatioHeavy:      1.2,
		VolRatioLight:      0.8,
		StopBelowMA50Pct:   0.02,
		StopBelowMA20Pct:   0.03,
		RiskControl:        risk.FlatRatios(0.05, 0.20, false),
	}
}
