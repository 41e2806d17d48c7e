package strategy

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/risk"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// NDXMA50VolumeRSIWarmup covers MA50 plus the 3-bar direction and 5-bar slope checks.
const NDXMA50VolumeRSIWarmup = 60

// NDXMA50VolumeRSI classifies the trend from MA50 and then applies a fixed
// RSI14 x volume-ratio table per trend branch.
type NDXMA50VolumeRSI struct {
	cfg NDXMA50VolumeRSIConfig
}

func NewNDXMA50VolumeRSI(cfg NDXMA50VolumeRSIConfig) (*NDXMA50VolumeRSI, error) {
	if err := validateConfig(NameNDXMA50VolumeRSI, cfg); err != nil {
		return nil, err
	}

	return &NDXMA50VolumeRSI{cfg: cfg}, nil
}

func (s *NDXMA50VolumeRSI) Name() string { return NameNDXMA50VolumeRSI }

func (s *NDXMA50VolumeRSI) WarmupBars() int { return NDXMA50VolumeRSIWarmup }

func (s *NDXMA50VolumeRSI) Indicators() []indicator.Column {
	return []indicator.Column{
		indicator.SMAColumn{Period: 50},
		indicator.SMAColumn{Period: 20},
		indicator.RSIColumn{Period: 14},
		indicator.VolumeRatioColumn{Period: 20, Cap: 3.0},
	}
}

func (s *NDXMA50VolumeRSI) GenerateSignal(window *indicator.Frame, _ optional.Option[types.PositionContext]) types.Signal {
	if sig, ok := precheck(window, s.WarmupBars(), s.Indicators()); !ok {
		sig.TrendType = types.TrendTransition

		return sig
	}

	t := window.Last().Time
	trend := s.TrendType(window)
	rsi := window.Value("rsi_14")
	vol := window.Value("volume_ratio")
	heavy := vol >= s.cfg.VolRatioHeavy
	light := vol <= s.cfg.VolRatioLight

	sig := types.Signal{Time: t, Action: types.ActionHold, TrendType: trend}

	switch trend {
	case types.TrendUp:
		switch {
		case rsi >= 40 && rsi <= 50 && light:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionBuy, 0.35, types.ReasonBullPullbackVolumeOK
		case rsi >= 70 && rsi <= 80 && light:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionSell, 0.25, types.ReasonBullOverboughtVolumeWeak
		case rsi > 80 && heavy:
			sig.TargetPosition, sig.Reason = 1.0, types.ReasonBullOverboughtVolumeOK
		default:
			sig.TargetPosition, sig.Reason = 1.0, types.ReasonBullHold
		}
	case types.TrendDown:
		switch {
		case rsi >= 50 && rsi <= 60 && heavy:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionSell, 0.5, types.ReasonBearRallyVolumeHeavy
		case rsi >= 20 && rsi <= 30 && light:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionBuy, 0.3, types.ReasonBearOversoldVolumeLight
		case rsi < 20 && heavy:
			sig.Reason = types.ReasonBearOversoldNoBottom
		default:
			sig.Reason = types.ReasonBearHold
		}
	case types.TrendOscillate:
		switch {
		case rsi >= 65 && rsi <= 70 && heavy:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionSell, 0.6, types.ReasonOscSell
		case rsi >= 30 && rsi <= 35 && light:
			sig.Action, sig.TargetPosition, sig.Reason = types.ActionBuy, 0.35, types.ReasonOscBuy
		default:
			sig.Reason = types.ReasonOscHold
		}
	default:
		sig.Reason = types.ReasonTransition
	}

	return sig
}

// TrendType evaluates up, down, oscillate then transition for the last bar.
// Up needs close above MA50, MA50 rising for three bars and not two closes
// below it; down is the mirror. Oscillate needs five flat MA50 slopes and
// close within the oscillate band.
func (s *NDXMA50VolumeRSI) TrendType(window *indicator.Frame) types.TrendType {
	ma, ok := window.Column("ma50")
	closes := window.Closes()
	i := len(closes) - 1

	if !ok || i < 3 {
		return types.TrendTransition
	}

	c0, c1 := closes[i], closes[i-1]
	m0, m1, m2, m3 := ma[i], ma[i-1], ma[i-2], ma[i-3]

	for _, v := range []float64{c0, m0, m1, m2, m3} {
		if !indicator.IsDefined(v) {
			return types.TrendTransition
		}
	}

	if c0 > m0 && m0 > m1 && m1 > m2 && m2 > m3 && !(c0 < m0 && c1 < m1) {
		return types.TrendUp
	}

	if c0 < m0 && m0 < m1 && m1 < m2 && m2 < m3 && !(c0 > m0 && c1 > m1) {
		return types.TrendDown
	}

	if i < 4 || m0 <= 0 {
		return types.TrendTransition
	}

	for k := 0; k < 5; k++ {
		slope, ok := slopePct(ma, i-k)
		if !ok || math.Abs(slope) >= s.cfg.SlopeFlatThreshold {
			return types.TrendTransition
		}
	}

	if c0 >= m0*(1-s.cfg.OscillateRange) && c0 <= m0*(1+s.cfg.OscillateRange) {
		return types.TrendOscillate
	}

	return types.TrendTransition
}

// slopePct is the one-bar MA change at i, in percent.
func slopePct(ma indicator.Series, i int) (float64, bool) {
	if i < 1 || i >= len(ma) {
		return 0, false
	}

	prev, cur := ma[i-1], ma[i]
	if prev == 0 || !indicator.IsDefined(prev) || !indicator.IsDefined(cur) {
		return 0, false
	}

	return (cur - prev) / prev * 100, true
}

// CalculateRisk uses the configured ratios, except that pullback entries stop
// below MA50 and light-volume bear entries stop below MA20.
func (s *NDXMA50VolumeRSI) CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels {
	if window.Len() == 0 {
		return types.RiskLevels{}
	}

	levels := risk.StopLossTakeProfit(window.Last().Close, 1, s.cfg.RiskControl, sig.Reason)

	switch sig.Reason {
	case types.ReasonBullPullbackVolumeOK:
		if ma50 := window.Value("ma50"); indicator.IsDefined(ma50) {
			levels.StopLoss = ma50 * (1 - s.cfg.StopBelowMA50Pct)
		}
	case types.ReasonBearOversoldVolumeLight:
		if ma20 := window.Value("ma20"); indicator.IsDefined(ma20) {
			levels.StopLoss = ma20 * (1 - s.cfg.StopBelowMA20Pct)
		}
	}

	return levels
}
