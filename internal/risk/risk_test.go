package risk

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type RiskTestSuite struct {
	suite.Suite
}

func TestRiskSuite(t *testing.T) {
	suite.Run(t, new(RiskTestSuite))
}

func (suite *RiskTestSuite) TestCheckExtremeMarket() {
	tests := []struct {
		name     string
		vix      optional.Option[float64]
		rsi      optional.Option[float64]
		expected bool
	}{
		{"high vix and rsi extreme", optional.Some(35.0), optional.Some(5.0), true},
		{"high vix and rsi overbought extreme", optional.Some(35.0), optional.Some(95.0), true},
		{"calm vix and rsi extreme", optional.Some(20.0), optional.Some(5.0), false},
		{"high vix normal rsi", optional.Some(40.0), optional.Some(50.0), false},
		{"no vix rsi extreme", optional.None[float64](), optional.Some(92.0), true},
		{"no vix normal rsi", optional.None[float64](), optional.Some(50.0), false},
		{"boundary rsi 10 is not extreme", optional.None[float64](), optional.Some(10.0), false},
		{"no rsi", optional.Some(50.0), optional.None[float64](), false},
		{"nan rsi", optional.None[float64](), optional.Some(math.NaN()), false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, CheckExtremeMarket(tc.vix, tc.rsi))
		})
	}
}

func (suite *RiskTestSuite) TestApplyPositionCap() {
	none := optional.None[float64]()

	suite.Equal(0.8, ApplyPositionCap(1.0, types.RegimeBull, none, DynamicCap{}))
	suite.Equal(-0.3, ApplyPositionCap(-1.0, types.RegimeBear, none, DynamicCap{}))
	suite.Equal(0.5, ApplyPositionCap(0.9, types.RegimeOscillate, none, DynamicCap{}))
	suite.Equal(-0.5, ApplyPositionCap(-0.7, types.RegimeTransition, none, DynamicCap{}))
	suite.Equal(0.2, ApplyPositionCap(0.2, types.RegimeBear, none, DynamicCap{}))
	suite.Equal(0.0, ApplyPositionCap(0, types.RegimeBull, none, DynamicCap{}))
}

func (suite *RiskTestSuite) TestDynamicCap() {
	dyn := DynamicCap{Enabled: true, BullStrongOverboughtCap: 0.4, BearStrongOversoldCap: 0.1}

	suite.Equal(0.4, ApplyPositionCap(1.0, types.RegimeBull, optional.Some(88.0), dyn))
	suite.Equal(0.8, ApplyPositionCap(1.0, types.RegimeBull, optional.Some(70.0), dyn))
	suite.Equal(-0.1, ApplyPositionCap(-1.0, types.RegimeBear, optional.Some(12.0), dyn))
	suite.Equal(0.5, ApplyPositionCap(1.0, types.RegimeOscillate, optional.Some(95.0), dyn))

	dyn.Enabled = false
	suite.Equal(0.8, ApplyPositionCap(1.0, types.RegimeBull, optional.Some(88.0), dyn))
}

func (suite *RiskTestSuite) TestCapNeverIncreasesMagnitude() {
	for _, r := range []types.Regime{types.RegimeBull, types.RegimeBear, types.RegimeOscillate, types.RegimeTransition} {
		for _, p := range []float64{-1, -0.6, -0.1, 0, 0.1, 0.6, 1} {
			capped := ApplyPositionCap(p, r, optional.None[float64](), DynamicCap{})
			suite.LessOrEqual(math.Abs(capped), math.Abs(p))
			suite.LessOrEqual(math.Abs(capped), RegimeCap(r))
		}
	}
}

func (suite *RiskTestSuite) TestStopLossTakeProfitDefaults() {
	long := StopLossTakeProfit(100, 1, Ratios{}, types.ReasonOversold)
	suite.InDelta(97.0, long.StopLoss, 1e-9)
	suite.InDelta(107.0, long.TakeProfit, 1e-9)

	short := StopLossTakeProfit(100, -0.5, Ratios{}, types.ReasonOverbought)
	suite.InDelta(103.0, short.StopLoss, 1e-9)
	suite.InDelta(93.0, short.TakeProfit, 1e-9)

	lev := StopLossTakeProfit(100, 1, Ratios{Leveraged: true}, types.ReasonOversold)
	suite.InDelta(95.0, lev.StopLoss, 1e-9)

	flat := StopLossTakeProfit(100, 0, Ratios{}, types.ReasonHold)
	suite.Equal(types.RiskLevels{StopLoss: 100, TakeProfit: 100}, flat)
}

func (suite *RiskTestSuite) TestStopLossTakeProfitPerReason() {
	ratios := Ratios{
		StopLoss:   map[string]float64{"default": 0.04, "golden_cross": 0.02},
		TakeProfit: map[string]float64{"golden_cross": 0.1},
	}

	cross := StopLossTakeProfit(200, 1, ratios, types.ReasonGoldenCross)
	suite.InDelta(196.0, cross.StopLoss, 1e-9)
	suite.InDelta(220.0, cross.TakeProfit, 1e-9)

	other := StopLossTakeProfit(200, 1, ratios, types.ReasonOversold)
	suite.InDelta(192.0, other.StopLoss, 1e-9)
	suite.InDelta(214.0, other.TakeProfit, 1e-9)

	flat := FlatRatios(0.05, 0.08, false)
	stop, take := flat.Resolve(types.ReasonDeathCross)
	suite.Equal(0.05, stop)
	suite.Equal(0.08, take)
}

func (suite *RiskTestSuite) TestRatiosFromYAML() {
	var scalar Ratios
	suite.Require().NoError(yaml.Unmarshal([]byte("stop_loss_ratio: 0.04\ntake_profit_ratio: 0.1\n"), &scalar))
	suite.Equal(RatioTable{"default": 0.04}, scalar.StopLoss)

	var table Ratios
	doc := "stop_loss_ratio:\n  default: 0.03\n  golden_cross: 0.02\nis_leverage_etf: true\n"
	suite.Require().NoError(yaml.Unmarshal([]byte(doc), &table))
	suite.True(table.Leveraged)

	stop, take := table.Resolve(types.ReasonGoldenCross)
	suite.Equal(0.02, stop)
	suite.Equal(DefaultTakeRatio, take)
}
