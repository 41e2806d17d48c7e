package strategy

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/risk"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// EMACrossV1 goes fully long on a golden cross of the short EMA over the long
// EMA and flat on the death cross. In monthly mode the position is only
// re-evaluated on the last trading day of each month (see RebalanceDue).
type EMACrossV1 struct {
	cfg EMACrossV1Config
}

func NewEMACrossV1(cfg EMACrossV1Config) (*EMACrossV1, error) {
	if err := validateConfig(NameEMACrossV1, cfg); err != nil {
		return nil, err
	}

	return &EMACrossV1{cfg: cfg}, nil
}

func (s *EMACrossV1) Name() string { return NameEMACrossV1 }

func (s *EMACrossV1) WarmupBars() int { return s.cfg.LongEMA }

func (s *EMACrossV1) Indicators() []indicator.Column {
	return []indicator.Column{
		indicator.EMAColumn{Span: s.cfg.ShortEMA},
		indicator.EMAColumn{Span: s.cfg.LongEMA},
	}
}

func (s *EMACrossV1) GenerateSignal(window *indicator.Frame, current optional.Option[types.PositionContext]) types.Signal {
	columns := s.Indicators()
	if sig, ok := precheck(window, max(2, s.WarmupBars()), columns); !ok {
		return sig
	}

	t := window.Last().Time
	short, _ := window.Column(columns[0].Name())
	long, _ := window.Column(columns[1].Name())
	n := len(short)

	if s.cfg.RebalanceFreq == RebalanceMonthly {
		if RebalanceDue(window.Bars()) {
			if short[n-1] > long[n-1] {
				return decision(t, 1.0, types.ReasonMonthlyRebalanceBull)
			}

			return exitDecision(t, types.ReasonMonthlyRebalanceBear)
		}

		return types.Signal{Time: t, Action: types.ActionHold, TargetPosition: heldSize(current), Reason: types.ReasonHoldUntilMonthEnd}
	}

	golden := short[n-1] > long[n-1] && short[n-2] <= long[n-2]
	death := short[n-1] < long[n-1] && short[n-2] >= long[n-2]

	switch {
	case golden:
		return decision(t, 1.0, types.ReasonGoldenCross)
	case death:
		return exitDecision(t, types.ReasonDeathCross)
	default:
		return types.Signal{Time: t, Action: types.ActionHold, TargetPosition: heldSize(current), Reason: types.ReasonHold}
	}
}

func (s *EMACrossV1) CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels {
	return longOnlyRisk(sig, window, s.cfg.RiskControl)
}

// IsMonthEnd reports whether t is the last weekday of its month. It looks at
// the calendar only, so it never needs a future bar.
func IsMonthEnd(t time.Time) bool {
	next := t.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next.Month() != t.Month()
}

// RebalanceDue reports whether the last bar is a monthly rebalance day. That is
// the last weekday of the month, or the first session of a month whose
// predecessor ended on an exchange holiday and so was never flagged.
func RebalanceDue(bars []types.Bar) bool {
	n := len(bars)
	if n == 0 {
		return false
	}

	t := bars[n-1].Time
	if IsMonthEnd(t) {
		return true
	}

	if n < 2 {
		return false
	}

	prev := bars[n-2].Time
	newMonth := prev.Year() != t.Year() || prev.Month() != t.Month()

	return newMonth && !IsMonthEnd(prev)
}

// EMATrendV2 is fully long while the fast EMA is above the slow EMA and the
// rolling volatility is below a threshold, otherwise flat.
type EMATrendV2 struct {
	cfg EMATrendV2Config
}

func NewEMATrendV2(cfg EMATrendV2Config) (*EMATrendV2, error) {
	if err := validateConfig(NameEMATrendV2, cfg); err != nil {
		return nil, err
	}

	return &EMATrendV2{cfg: cfg}, nil
}

func (s *EMATrendV2) Name() string { return NameEMATrendV2 }

func (s *EMATrendV2) WarmupBars() int { return max(s.cfg.EMASlow, s.cfg.VolWindow+1) }

func (s *EMATrendV2) Indicators() []indicator.Column {
	return []indicator.Column{
		indicator.EMAColumn{Span: s.cfg.EMAFast},
		indicator.EMAColumn{Span: s.cfg.EMASlow},
		indicator.VolatilityColumn{Period: s.cfg.VolWindow},
	}
}

func (s *EMATrendV2) GenerateSignal(window *indicator.Frame, _ optional.Option[types.PositionContext]) types.Signal {
	columns := s.Indicators()
	if sig, ok := precheck(window, s.WarmupBars(), columns); !ok {
		return sig
	}

	t := window.Last().Time
	uptrend := window.Value(columns[0].Name()) > window.Value(columns[1].Name())
	lowVol := window.Value(columns[2].Name()) < s.cfg.VolThreshold

	if uptrend && lowVol {
		return decision(t, 1.0, types.ReasonUptrendLowVol)
	}

	return exitDecision(t, types.ReasonNoUptrendOrHighVol)
}

func (s *EMATrendV2) CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels {
	return longOnlyRisk(sig, window, s.cfg.RiskControl)
}

// EMATrendV3 requires a long-term uptrend (close above the long SMA and fast
// EMA above slow EMA) confirmed by ADX strength and a positive MACD line.
// High volatility halves the position instead of exiting.
type EMATrendV3 struct {
	cfg EMATrendV3Config
}

func NewEMATrendV3(cfg EMATrendV3Config) (*EMATrendV3, error) {
	if err := validateConfig(NameEMATrendV3, cfg); err != nil {
		return nil, err
	}

	return &EMATrendV3{cfg: cfg}, nil
}

func (s *EMATrendV3) Name() string { return NameEMATrendV3 }

func (s *EMATrendV3) WarmupBars() int {
	return max(s.cfg.SMALong, s.cfg.EMASlow, 2*s.cfg.ADXPeriod, s.cfg.MACDSlow, s.cfg.VolWindow+1)
}

func (s *EMATrendV3) Indicators() []indicator.Column {
	return []indicator.Column{
		indicator.EMAColumn{Span: s.cfg.EMAFast},
		indicator.EMAColumn{Span: s.cfg.EMASlow},
		indicator.SMAColumn{Period: s.cfg.SMALong},
		indicator.ADXColumn{Period: s.cfg.ADXPeriod},
		indicator.MACDLineColumn{Fast: s.cfg.MACDFast, Slow: s.cfg.MACDSlow, Signal: s.cfg.MACDSignal},
		indicator.VolatilityColumn{Period: s.cfg.VolWindow},
	}
}

func (s *EMATrendV3) GenerateSignal(window *indicator.Frame, _ optional.Option[types.PositionContext]) types.Signal {
	columns := s.Indicators()
	if sig, ok := precheck(window, s.WarmupBars(), columns); !ok {
		return sig
	}

	t := window.Last().Time
	closePrice := window.Last().Close
	emaFast := window.Value(columns[0].Name())
	emaSlow := window.Value(columns[1].Name())
	smaLong := window.Value(columns[2].Name())
	adx := window.Value(columns[3].Name())
	macd := window.Value(columns[4].Name())
	vol := window.Value(columns[5].Name())

	if !(closePrice > smaLong && emaFast > emaSlow) {
		return exitDecision(t, types.ReasonNoUptrend)
	}

	if !(adx > s.cfg.ADXThreshold && macd > 0) {
		return exitDecision(t, types.ReasonTrendWeak)
	}

	if !(vol < s.cfg.VolThreshold) {
		return decision(t, s.cfg.HighVolPosition, types.ReasonTrendHighVol)
	}

	return decision(t, 1.0, types.ReasonTrendConfirmed)
}

func (s *EMATrendV3) CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels {
	return longOnlyRisk(sig, window, s.cfg.RiskControl)
}

// longOnlyRisk prices long levels from the last close regardless of the signal side.
func longOnlyRisk(sig types.Signal, window *indicator.Frame, ratios risk.Ratios) types.RiskLevels {
	if window.Len() == 0 {
		return types.RiskLevels{}
	}

	return risk.StopLossTakeProfit(window.Last().Close, 1, ratios, sig.Reason)
}
