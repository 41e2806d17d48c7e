package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
)

const reasonScripted types.Reason = "scripted"

var testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// scriptedStrategy returns targets[i] on bar i and flat afterwards.
type scriptedStrategy struct {
	warmup  int
	targets []float64
	levels  types.RiskLevels
	columns []indicator.Column

	contexts []optional.Option[types.PositionContext]
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) WarmupBars() int { return s.warmup }

func (s *scriptedStrategy) Indicators() []indicator.Column { return s.columns }

func (s *scriptedStrategy) GenerateSignal(window *indicator.Frame, current optional.Option[types.PositionContext]) types.Signal {
	s.contexts = append(s.contexts, current)

	i := window.Len() - 1
	target := 0.0

	if i < len(s.targets) {
		target = s.targets[i]
	}

	action := types.ActionHold

	switch {
	case target > 0:
		action = types.ActionBuy
	case target < 0:
		action = types.ActionSell
	}

	return types.Signal{
		Time:           window.Last().Time,
		Action:         action,
		TargetPosition: target,
		Reason:         reasonScripted,
	}
}

// CalculateRisk returns the fixed levels. Zero levels never trigger.
func (s *scriptedStrategy) CalculateRisk(_ types.Signal, _ *indicator.Frame) types.RiskLevels {
	return s.levels
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func frameOf(closes ...float64) *indicator.Frame {
	return indicator.NewFrame(mocks.BarsFromCloses("QQQ", testStart, closes))
}

// noFrictionConfig turns off every optional rule and cost.
func noFrictionConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Commission = 0
	cfg.UseIntrabarStopTake = false
	cfg.AccrueRiskFreeWhenFlat = false

	return cfg
}
