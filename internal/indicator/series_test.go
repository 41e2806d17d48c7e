package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}

	return out
}

func zigzag(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3) + float64(i%4)
	}

	return out
}

func (suite *SeriesTestSuite) TestRSIWarmupIsNeutral() {
	rsi := RSI(zigzag(30), 14)
	suite.Len(rsi, 30)

	for i := 0; i < 13; i++ {
		suite.Equal(NeutralRSI, rsi[i])
	}
}

func (suite *SeriesTestSuite) TestRSIFirstWindowCountsFirstBarAsFlat() {
	rsi := RSI([]float64{1, 2, 3, 2}, 3)

	suite.Equal(NeutralRSI, rsi[0])
	suite.Equal(NeutralRSI, rsi[1])
	// gains 0,1,1 and no loss
	suite.Greater(rsi[2], 99.99)
	// gains 1,1,0 over losses 0,0,1
	suite.InDelta(200.0/3, rsi[3], 1e-9)
}

func (suite *SeriesTestSuite) TestRSIRange() {
	for _, period := range []int{2, 9, 14, 24} {
		for _, v := range RSI(zigzag(120), period) {
			suite.GreaterOrEqual(v, 0.0)
			suite.LessOrEqual(v, 100.0)
		}
	}
}

func (suite *SeriesTestSuite) TestRSIRisingApproaches100() {
	rsi := RSI(rising(40), 14)
	last := rsi.Last()

	suite.Greater(last, 99.99)
	suite.LessOrEqual(last, 100.0)
}

func (suite *SeriesTestSuite) TestRSIFallingApproaches0() {
	values := rising(40)
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}

	suite.Less(RSI(values, 14).Last(), 0.01)
}

func (suite *SeriesTestSuite) TestWilderRSIWarmupIsNaN() {
	rsi := WilderRSI(zigzag(30), 14)
	suite.True(math.IsNaN(rsi[13]))
	suite.True(IsDefined(rsi[14]))
}

func (suite *SeriesTestSuite) TestVerifyRSI() {
	worst, ok, err := VerifyRSI(zigzag(200), 14, 100)
	suite.Require().NoError(err)
	suite.True(ok)
	suite.GreaterOrEqual(worst, 0.0)

	_, ok, err = VerifyRSI(zigzag(200), 14, -1)
	suite.Require().NoError(err)
	suite.False(ok)
}

func (suite *SeriesTestSuite) TestVerifyRSIShortSeries() {
	_, ok, err := VerifyRSI(zigzag(14), 14, 100)
	suite.False(ok)
	suite.True(errors.IsInsufficientDataError(err))

	var short *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &short))
	suite.Equal(15, short.Required)
	suite.Equal(14, short.Actual)

	_, _, err = VerifyRSI(zigzag(15), 14, 100)
	suite.NoError(err)
}

func (suite *SeriesTestSuite) TestSMA() {
	sma := SMA([]float64{1, 2, 3, 4, 5}, 3)
	suite.True(math.IsNaN(sma[0]))
	suite.True(math.IsNaN(sma[1]))
	suite.InDeltaSlice([]float64{2, 3, 4}, []float64(sma[2:]), 1e-12)
}

func (suite *SeriesTestSuite) TestEMASeededWithFirstValue() {
	ema := EMA([]float64{1, 2, 3}, 3)
	suite.InDeltaSlice([]float64{1, 1.5, 2.25}, []float64(ema), 1e-12)
}

func (suite *SeriesTestSuite) TestMACDWarmup() {
	macd := MACD(zigzag(60), 12, 26, 9)
	suite.Len(macd.Line, 60)

	for i := 0; i < 25; i++ {
		suite.True(math.IsNaN(macd.Line[i]))
		suite.True(math.IsNaN(macd.Histogram[i]))
	}

	suite.True(IsDefined(macd.Line[25]))
	suite.True(IsDefined(macd.Signal[25]))
	suite.InDelta(0.0, macd.Histogram[25], 1e-12)
}

func (suite *SeriesTestSuite) TestVolumeRatio() {
	ratio := VolumeRatio([]float64{10, 10, 10, 40}, 3, 0)
	suite.True(math.IsNaN(ratio[1]))
	suite.InDelta(1.0, ratio[2], 1e-12)
	suite.InDelta(2.0, ratio[3], 1e-12)

	capped := VolumeRatio([]float64{10, 10, 10, 40}, 3, 1.5)
	suite.InDelta(1.5, capped[3], 1e-12)
}

func (suite *SeriesTestSuite) TestVolatilityWarmup() {
	vol := Volatility(zigzag(40), 20)
	suite.True(math.IsNaN(vol[19]))
	suite.True(IsDefined(vol[20]))
	suite.Greater(vol[20], 0.0)
}

func (suite *SeriesTestSuite) TestATRConstantRange() {
	closes := rising(30)
	high := make([]float64, len(closes))
	low := make([]float64, len(closes))

	for i, c := range closes {
		high[i] = c + 1
		low[i] = c - 1
	}

	atr := ATR(high, low, closes, 14)
	suite.True(math.IsNaN(atr[12]))
	suite.InDelta(2.0, atr[13], 1e-9)
	suite.InDelta(2.0, atr.Last(), 1e-9)
}

func (suite *SeriesTestSuite) TestADXSteadyUptrend() {
	closes := rising(60)
	high := make([]float64, len(closes))
	low := make([]float64, len(closes))

	for i, c := range closes {
		high[i] = c + 1
		low[i] = c - 1
	}

	adx := ADX(high, low, closes, 14)
	suite.Len(adx, 60)
	suite.True(math.IsNaN(adx[26]))
	suite.True(IsDefined(adx[27]))
	suite.InDelta(100.0, adx.Last(), 1e-9)
}

func (suite *SeriesTestSuite) TestLinearSlope() {
	suite.InDelta(2.0, LinearSlope([]float64{1, 3, 5}), 1e-12)
	suite.InDelta(0.0, LinearSlope([]float64{4, 4, 4, 4}), 1e-12)
	suite.Equal(0.0, LinearSlope([]float64{7}))
}

func (suite *SeriesTestSuite) TestStdDev() {
	suite.InDelta(1.0, StdDev([]float64{1, 2, 3}), 1e-12)
	suite.Equal(0.0, StdDev([]float64{1}))
}

func (suite *SeriesTestSuite) TestSeriesAccessors() {
	s := Series{1, 2, 3}
	suite.Equal(3.0, s.Last())
	suite.True(math.IsNaN(s.At(5)))
	suite.Equal(Series{2, 3}, s.Tail(2))
	suite.Equal(s, s.Tail(10))
	suite.True(math.IsNaN(Series(nil).Last()))
}
