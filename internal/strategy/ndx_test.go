package strategy

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/stretchr/testify/suite"
)

type NDXTestSuite struct {
	suite.Suite
	short *NDXShortTerm
	ma50  *NDXMA50VolumeRSI
	flat  optional.Option[types.PositionContext]
}

func TestNDXSuite(t *testing.T) {
	suite.Run(t, new(NDXTestSuite))
}

func (suite *NDXTestSuite) SetupTest() {
	var err error

	suite.short, err = NewNDXShortTerm(DefaultNDXShortTermConfig())
	suite.Require().NoError(err)

	suite.ma50, err = NewNDXMA50VolumeRSI(DefaultNDXMA50VolumeRSIConfig())
	suite.Require().NoError(err)

	suite.flat = optional.None[types.PositionContext]()
}

// sidewaysFrame is a flat market (oscillate regime) with the given short RSI
// path, a flat long RSI at 50 and the given volume ratio.
func sidewaysFrame(rsiShort indicator.Series, volumeRatio float64) *indicator.Frame {
	n := len(rsiShort)

	return frameOf(constant(n, 100), map[string]indicator.Series{
		"rsi_9":        rsiShort,
		"rsi_24":       constant(n, 50),
		"ma50":         constant(n, 100),
		"ma5":          constant(n, 99),
		"volume_ratio": constant(n, volumeRatio),
	})
}

func (suite *NDXTestSuite) TestShortTermOversoldBuyIsCapped() {
	f := sidewaysFrame(withLast(constant(60, 50), 50, 28), 1.0)

	sig := suite.short.GenerateSignal(f, suite.flat)
	suite.Equal(types.ActionBuy, sig.Action)
	suite.Equal(types.ReasonStrongOversold, sig.Reason)
	suite.Equal(0.3, sig.TargetPosition)

	levels := suite.short.CalculateRisk(sig, f)
	suite.InDelta(97.0, levels.StopLoss, 1e-9)
	suite.InDelta(107.0, levels.TakeProfit, 1e-9)
}

func (suite *NDXTestSuite) TestShortTermGoldenCross() {
	f := sidewaysFrame(withLast(constant(60, 45), 45, 55), 1.5)

	sig := suite.short.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonGoldenCross, sig.Reason)
	suite.Equal(0.4, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestShortTermExtremeMarketVeto() {
	f := sidewaysFrame(withLast(constant(60, 50), 50, 5), 1.0)

	sig := suite.short.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonExtremeMarket, sig.Reason)
	suite.Equal(0.0, sig.TargetPosition)

	held := optional.Some(types.PositionContext{Direction: types.DirectionLong, EntryReason: types.ReasonGoldenCross, Size: 0.4})
	sig = suite.short.GenerateSignal(f, held)
	suite.Equal(types.ReasonExtremeMarket, sig.Reason)
	suite.Equal(0.0, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestShortTermCalmVIXAllowsEntry() {
	f := sidewaysFrame(withLast(constant(60, 50), 50, 5), 1.0)
	suite.Require().NoError(f.SetColumn("vix", constant(60, 18)))

	sig := suite.short.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonStrongOversold, sig.Reason)
	suite.Equal(0.3, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestShortTermClosesCooledShort() {
	f := sidewaysFrame(withLast(constant(60, 50), 70, 60), 1.0)
	held := optional.Some(types.PositionContext{Direction: types.DirectionShort, EntryReason: types.ReasonStrongOverbought, Size: -0.3})

	sig := suite.short.GenerateSignal(f, held)
	suite.Equal(types.ActionClose, sig.Action)
	suite.Equal(types.ReasonCloseShortCooled, sig.Reason)
	suite.Equal(0.0, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestShortTermWarmup() {
	f := sidewaysFrame(constant(60, 50), 1.0)
	suite.Equal(types.ReasonInsufficientData, suite.short.GenerateSignal(f.Window(30), suite.flat).Reason)

	bare := frameOf(constant(60, 100), nil)
	suite.Equal(types.ReasonMissingIndicators, suite.short.GenerateSignal(bare, suite.flat).Reason)
}

func (suite *NDXTestSuite) ma50Frame(closes, ma50 indicator.Series, rsi, vol float64) *indicator.Frame {
	n := len(closes)

	return frameOf(closes, map[string]indicator.Series{
		"ma50":         ma50,
		"ma20":         constant(n, 90),
		"rsi_14":       constant(n, rsi),
		"volume_ratio": constant(n, vol),
	})
}

func (suite *NDXTestSuite) TestMA50TrendTypes() {
	up := suite.ma50Frame(ramp(70, 100, 1), ramp(70, 99, 1), 50, 1)
	suite.Equal(types.TrendUp, suite.ma50.TrendType(up))

	down := suite.ma50Frame(ramp(70, 200, -1), ramp(70, 201, -1), 50, 1)
	suite.Equal(types.TrendDown, suite.ma50.TrendType(down))

	osc := suite.ma50Frame(constant(70, 101), constant(70, 100), 50, 1)
	suite.Equal(types.TrendOscillate, suite.ma50.TrendType(osc))

	wide := suite.ma50Frame(constant(70, 110), constant(70, 100), 50, 1)
	suite.Equal(types.TrendTransition, suite.ma50.TrendType(wide))
}

func (suite *NDXTestSuite) TestMA50BullPullback() {
	f := suite.ma50Frame(ramp(70, 100, 1), ramp(70, 99, 1), 45, 0.7)

	sig := suite.ma50.GenerateSignal(f, suite.flat)
	suite.Equal(types.ActionBuy, sig.Action)
	suite.Equal(0.35, sig.TargetPosition)
	suite.Equal(types.ReasonBullPullbackVolumeOK, sig.Reason)
	suite.Equal(types.TrendUp, sig.TrendType)

	levels := suite.ma50.CalculateRisk(sig, f)
	suite.InDelta(168*0.98, levels.StopLoss, 1e-9)
	suite.InDelta(169*1.20, levels.TakeProfit, 1e-9)
}

func (suite *NDXTestSuite) TestMA50BullDefaultsLong() {
	f := suite.ma50Frame(ramp(70, 100, 1), ramp(70, 99, 1), 60, 1.0)

	sig := suite.ma50.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonBullHold, sig.Reason)
	suite.Equal(1.0, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestMA50BearRally() {
	f := suite.ma50Frame(ramp(70, 200, -1), ramp(70, 201, -1), 55, 1.3)

	sig := suite.ma50.GenerateSignal(f, suite.flat)
	suite.Equal(types.ActionSell, sig.Action)
	suite.Equal(types.ReasonBearRallyVolumeHeavy, sig.Reason)
	suite.Equal(types.TrendDown, sig.TrendType)
}

func (suite *NDXTestSuite) TestMA50BearOversoldStopsBelowMA20() {
	f := suite.ma50Frame(ramp(70, 200, -1), ramp(70, 201, -1), 25, 0.6)

	sig := suite.ma50.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonBearOversoldVolumeLight, sig.Reason)
	suite.Equal(0.3, sig.TargetPosition)

	levels := suite.ma50.CalculateRisk(sig, f)
	suite.InDelta(90*0.97, levels.StopLoss, 1e-9)
}

func (suite *NDXTestSuite) TestMA50OscillateBuy() {
	f := suite.ma50Frame(constant(70, 101), constant(70, 100), 32, 0.7)

	sig := suite.ma50.GenerateSignal(f, suite.flat)
	suite.Equal(types.ReasonOscBuy, sig.Reason)
	suite.Equal(0.35, sig.TargetPosition)
}

func (suite *NDXTestSuite) TestMA50Warmup() {
	f := suite.ma50Frame(constant(70, 101), constant(70, 100), 32, 0.7)

	sig := suite.ma50.GenerateSignal(f.Window(10), suite.flat)
	suite.Equal(types.ReasonInsufficientData, sig.Reason)
	suite.Equal(types.TrendTransition, sig.TrendType)
}
