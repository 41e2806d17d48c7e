package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/regime"
	"github.com/rxtech-lab/ndx-rsi/internal/risk"
	"github.com/rxtech-lab/ndx-rsi/internal/signal"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// NDXShortTermWarmup covers the 50-bar MA behind the regime classifier.
const NDXShortTermWarmup = 50

// NDXShortTerm is the regime-aware RSI composite for 3 to 10 day swings. It
// closes positions whose RSI extreme has faded, vetoes new entries in
// extreme markets, combines crosses, overbought/oversold and divergence
// rules, and caps the position by regime.
type NDXShortTerm struct {
	cfg NDXShortTermConfig
}

func NewNDXShortTerm(cfg NDXShortTermConfig) (*NDXShortTerm, error) {
	if err := validateConfig(NameNDXShortTerm, cfg); err != nil {
		return nil, err
	}

	cfg.Signal.ShortRSIColumn = indicator.RSIColumn{Period: cfg.RSIParams.ShortPeriod}.Name()
	cfg.Signal.LongRSIColumn = indicator.RSIColumn{Period: cfg.RSIParams.LongPeriod}.Name()
	cfg.Signal.MA50Column = indicator.SMAColumn{Period: 50}.Name()
	cfg.Signal.MA5Column = indicator.SMAColumn{Period: 5}.Name()
	cfg.Signal.VolumeColumn = indicator.VolumeRatioColumn{}.Name()

	return &NDXShortTerm{cfg: cfg}, nil
}

func (s *NDXShortTerm) Name() string { return NameNDXShortTerm }

func (s *NDXShortTerm) WarmupBars() int {
	return max(NDXShortTermWarmup, s.cfg.RSIParams.LongPeriod+1)
}

func (s *NDXShortTerm) Indicators() []indicator.Column {
	return []indicator.Column{
		indicator.RSIColumn{Period: s.cfg.RSIParams.ShortPeriod},
		indicator.RSIColumn{Period: s.cfg.RSIParams.LongPeriod},
		indicator.SMAColumn{Period: 50},
		indicator.SMAColumn{Period: 5},
		indicator.VolumeRatioColumn{Period: 20, Cap: 3.0},
	}
}

func (s *NDXShortTerm) GenerateSignal(window *indicator.Frame, current optional.Option[types.PositionContext]) types.Signal {
	if sig, ok := precheck(window, s.WarmupBars(), s.Indicators()); !ok {
		return sig
	}

	if sig, ok := signal.CloseCondition(window, s.cfg.Signal, current); ok {
		return sig
	}

	t := window.Last().Time
	env := regime.ClassifyFrame(window)
	rsi := window.Value(s.cfg.Signal.ShortRSIColumn)

	vix := optional.None[float64]()
	if v := window.Value(s.cfg.VIXColumn); indicator.IsDefined(v) {
		vix = optional.Some(v)
	}

	if risk.CheckExtremeMarket(vix, optional.Some(rsi)) {
		return types.HoldSignal(t, types.ReasonExtremeMarket)
	}

	sig := signal.Combine(window, env, s.cfg.Signal, current)
	sig.TargetPosition = risk.ApplyPositionCap(sig.TargetPosition, env, optional.Some(rsi), s.cfg.PositionCap)

	return sig
}

func (s *NDXShortTerm) CalculateRisk(sig types.Signal, window *indicator.Frame) types.RiskLevels {
	if window.Len() == 0 {
		return types.RiskLevels{}
	}

	return risk.StopLossTakeProfit(window.Last().Close, sig.TargetPosition, s.cfg.RiskControl, sig.Reason)
}
