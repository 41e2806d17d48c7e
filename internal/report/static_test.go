package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
	"go.uber.org/mock/gomock"
)

func (suite *ReportTestSuite) readJSON(path string) map[string]any {
	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var out map[string]any
	suite.Require().NoError(json.Unmarshal(data, &out))

	return out
}

func (suite *ReportTestSuite) TestWriteStatic() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	s := mocks.NewMockStrategy(ctrl)
	s.EXPECT().Name().Return(strategy.NameEMATrendV2).AnyTimes()
	s.EXPECT().Indicators().Return([]indicator.Column{indicator.SMAColumn{Period: 5}, indicator.RSIColumn{Period: 9}}).AnyTimes()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := mocks.BarsFromCloses("QQQ", start, []float64{100, 101, 102, 103, 104.123456})
	frame := indicator.NewFrame(bars)
	suite.Require().NoError(indicator.NewColumnRegistry().Attach(frame, indicator.SMAColumn{Period: 5}))

	sig := types.Signal{Time: frame.Last().Time, Action: types.ActionBuy, TargetPosition: 1, Reason: types.ReasonUptrendLowVol}
	payload := NewSignalPayload(s, "QQQ", frame, sig, types.RiskLevels{StopLoss: 99})
	series := NewTimeseries("QQQ", start.AddDate(0, 0, -3), frame.Last().Time, bars)

	dir := filepath.Join(suite.T().TempDir(), "web")
	paths, err := WriteStatic(dir, series, payload)
	suite.Require().NoError(err)
	suite.Equal([]string{filepath.Join(dir, TimeseriesFile), filepath.Join(dir, SignalFile)}, paths)

	ts := suite.readJSON(paths[0])
	suite.Equal("QQQ", ts["symbol"])
	suite.Equal("2024-02-27", ts["from"])
	points := ts["series"].([]any)
	suite.Len(points, 5)
	suite.Equal([]any{bars[4].Time.Format(time.DateOnly), 104.1235}, points[4])

	sj := suite.readJSON(paths[1])
	suite.Equal(strategy.NameEMATrendV2, sj["strategy"])
	suite.Equal("fully long", sj["advice"])
	suite.NotContains(sj, "error")

	values := sj["indicators"].(map[string]any)
	suite.InDelta(102.0247, values["ma5"], 1e-9)
	suite.Contains(values, "rsi_9")
	suite.Nil(values["rsi_9"])

	signal := sj["signal"].(map[string]any)
	suite.Equal(string(types.ReasonUptrendLowVol), signal["reason"])
}

func (suite *ReportTestSuite) TestWriteStaticWithoutSignal() {
	dir := suite.T().TempDir()
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	paths, err := WriteStatic(dir, NewTimeseries("QQQ", end.AddDate(-5, 0, 0), end, nil), ErrorPayload(types.ErrInsufficientData))
	suite.Require().NoError(err)

	ts := suite.readJSON(paths[0])
	suite.Equal([]any{}, ts["series"])

	sj := suite.readJSON(paths[1])
	suite.Equal(map[string]any{"error": types.ErrInsufficientData}, sj)
}
