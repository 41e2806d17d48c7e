package report

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) result() *types.Result {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := &types.Result{ID: "run-1", Symbol: "QQQ", Strategy: strategy.NameNDXShortTerm}
	r.SetMetrics(types.PerformanceMetrics{TotalReturn: 0.12, MaxDrawdown: 0.05, SharpeRatio: 1.1, WinRate: 0.6, TotalTrades: 5, ProfitFactor: 1.8})
	r.Benchmark = types.BenchmarkMetrics{TotalReturn: 0.1, MaxDrawdown: 0.08, SharpeRatio: 0.9}
	r.Series = []types.DailyRow{
		{Date: start, Equity: 1.01, CumulativeStrategyReturn: 0.01, Position: 1},
		{Date: start.AddDate(0, 0, 1), Equity: 1.02, CumulativeStrategyReturn: 0.02, Position: 0},
	}
	r.Trades = []types.ClosedTrade{
		{EntryTime: start, ExitTime: start.AddDate(0, 0, 1), Size: 1, EntryPrice: 100, ExitPrice: 101, EntryReason: types.ReasonGoldenCross, Exit: types.ExitSignal, Return: 0.009},
	}

	return r
}

func (suite *ReportTestSuite) TestActionFromPosition() {
	suite.Equal("fully long", ActionFromPosition(1))
	suite.Equal("partially long (50%)", ActionFromPosition(0.5))
	suite.Equal("flat, wait", ActionFromPosition(0))
	suite.Equal("light short (-30%)", ActionFromPosition(-0.3))
	suite.Equal("fully short", ActionFromPosition(-1))
}

func (suite *ReportTestSuite) TestFormatValue() {
	suite.Equal("N/A", FormatValue(math.NaN()))
	suite.Equal("12.35", FormatValue(12.346))
	suite.Equal("1.235e+04", FormatValue(12346))
	suite.Equal("0.00", FormatValue(0))
}

func (suite *ReportTestSuite) TestDerivation() {
	suite.Contains(Derivation(types.ReasonGoldenCross), "crossed above")
	suite.Equal("reason: custom", Derivation("custom"))
	suite.Equal("-", Derivation(""))
}

func (suite *ReportTestSuite) TestSignalReport() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	s := mocks.NewMockStrategy(ctrl)
	s.EXPECT().Name().Return(strategy.NameNDXShortTerm).AnyTimes()
	s.EXPECT().Indicators().Return([]indicator.Column{indicator.SMAColumn{Period: 5}, indicator.RSIColumn{Period: 9}}).AnyTimes()

	bars := mocks.BarsFromCloses("QQQ", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), []float64{100, 101, 102, 103, 104, 105})
	frame := indicator.NewFrame(bars)
	suite.Require().NoError(indicator.NewColumnRegistry().Attach(frame, indicator.SMAColumn{Period: 5}))

	sig := types.Signal{Action: types.ActionBuy, TargetPosition: 0.5, Reason: types.ReasonTrendPullback, TrendType: types.TrendUp}
	text := SignalReport(s, "QQQ", frame, sig, types.RiskLevels{StopLoss: 101.85, TakeProfit: 112.35})

	suite.Contains(text, fmt.Sprintf("[QQQ %s signal - %s]", strategy.NameNDXShortTerm, frame.Last().Time.Format(time.DateOnly)))
	suite.Contains(text, "Close: 105.00")
	suite.Contains(text, "ma5: 103.00")
	suite.Contains(text, "rsi_9: N/A")
	suite.Contains(text, "Trend: up")
	suite.Contains(text, "partially long (50%)")
	suite.Contains(text, "Stop loss: 101.85")
	suite.Contains(text, "Take profit: 112.35")
}

func (suite *ReportTestSuite) TestSignalReportWithoutData() {
	suite.Contains(SignalReport(nil, "QQQ", nil, types.Signal{}, types.RiskLevels{}), "no data")
}

func (suite *ReportTestSuite) TestComparison() {
	text := Comparison(suite.result())

	suite.Contains(text, "Backtest NDX_short_term on QQQ vs buy and hold")
	suite.Contains(text, "12.00%")
	suite.Contains(text, "+2.00%")
	suite.Contains(text, "Trades 5")
}

func (suite *ReportTestSuite) TestComparisonOfFailedResult() {
	text := Comparison(types.InsufficientDataResult("x", "EMA_cross_v1"))
	suite.Contains(text, types.ErrInsufficientData)
	suite.NotContains(text, "Sharpe")
}

func (suite *ReportTestSuite) TestLeaderboard() {
	text := Leaderboard([]*types.Result{suite.result(), types.InsufficientDataResult("y", "EMA_cross_v1")})
	suite.Contains(text, strategy.NameNDXShortTerm)
	suite.Contains(text, types.ErrInsufficientData)
}

func (suite *ReportTestSuite) TestExportParquet() {
	dir := suite.T().TempDir()

	w, err := NewSeriesWriter(nil)
	suite.Require().NoError(err)
	defer w.Close()

	suite.Require().NoError(w.Add(suite.result()))
	suite.Require().NoError(w.Add(types.InsufficientDataResult("z", "EMA_cross_v1")))

	n, err := w.Count("daily_series")
	suite.Require().NoError(err)
	suite.Equal(2, n)

	paths, err := w.Export(dir, FormatParquet)
	suite.Require().NoError(err)
	suite.Equal([]string{filepath.Join(dir, "series.parquet"), filepath.Join(dir, "trades.parquet")}, paths)

	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	var rows int
	suite.Require().NoError(db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", paths[1])).Scan(&rows))
	suite.Equal(1, rows)
}

func (suite *ReportTestSuite) TestExportResultsCSV() {
	dir := suite.T().TempDir()

	paths, err := ExportResults([]*types.Result{suite.result()}, dir, FormatCSV, nil)
	suite.Require().NoError(err)
	suite.FileExists(paths[0])
	suite.FileExists(paths[1])
}
