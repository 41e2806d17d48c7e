package sweep

import (
	"context"
	"testing"

	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SweepTestSuite struct {
	suite.Suite
	bars []types.Bar
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepTestSuite))
}

func (suite *SweepTestSuite) SetupSuite() {
	suite.bars = mocks.GenerateDaily("QQQ", 400)
}

func (suite *SweepTestSuite) grid(names ...string) []Job {
	jobs, err := Grid(strategy.NewRegistry(), names, strategy.DefaultConfigs(), engine.DefaultConfig())
	suite.Require().NoError(err)

	return jobs
}

func (suite *SweepTestSuite) TestRunKeepsJobOrder() {
	names := strategy.NewRegistry().Names()
	jobs := suite.grid(names...)

	outcomes, err := Run(context.Background(), suite.bars, jobs, Options{Symbol: "QQQ", Workers: 2}, nil)
	suite.Require().NoError(err)
	suite.Require().Len(outcomes, len(names))

	for i, o := range outcomes {
		suite.Equal(names[i], o.Job.Name)
		suite.Require().NotNil(o.Result)
		suite.Equal(names[i], o.Result.Strategy)
		suite.Equal("QQQ", o.Result.Symbol)
	}
}

func (suite *SweepTestSuite) TestRunMatchesSequentialRun() {
	jobs := suite.grid(strategy.NameNDXShortTerm, strategy.NameNDXShortTerm, strategy.NameNDXShortTerm)

	outcomes, err := Run(context.Background(), suite.bars, jobs, Options{Workers: 3}, nil)
	suite.Require().NoError(err)

	for _, o := range outcomes[1:] {
		suite.Equal(outcomes[0].Result.Metrics, o.Result.Metrics)
		suite.Equal(outcomes[0].Result.Benchmark, o.Result.Benchmark)
	}
}

func (suite *SweepTestSuite) TestShortBarsReportInsufficientData() {
	jobs := suite.grid(strategy.NameEMACrossV1)

	outcomes, err := Run(context.Background(), suite.bars[:20], jobs, Options{}, nil)
	suite.Require().NoError(err)
	suite.Equal(types.ErrInsufficientData, outcomes[0].Result.Error)

	_, ok := Best(outcomes)
	suite.False(ok)
}

func (suite *SweepTestSuite) TestInvalidConfigFails() {
	jobs := suite.grid(strategy.NameNDXShortTerm)
	jobs[0].Config.Commission = -1

	_, err := Run(context.Background(), suite.bars, jobs, Options{}, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
}

func (suite *SweepTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, suite.bars, suite.grid(strategy.NameNDXShortTerm), Options{}, nil)
	suite.Require().Error(err)
}

func (suite *SweepTestSuite) TestGridUnknownStrategy() {
	_, err := Grid(strategy.NewRegistry(), []string{"nope"}, strategy.DefaultConfigs(), engine.DefaultConfig())
	suite.Equal(errors.ErrCodeStrategyNotFound, errors.GetCode(err))
}

func (suite *SweepTestSuite) TestBest() {
	low := &types.Result{Strategy: "low"}
	low.SetMetrics(types.PerformanceMetrics{SharpeRatio: 0.5})
	high := &types.Result{Strategy: "high"}
	high.SetMetrics(types.PerformanceMetrics{SharpeRatio: 1.5})
	failed := &types.Result{Strategy: "failed", Error: types.ErrInsufficientData}
	failed.SetMetrics(types.PerformanceMetrics{SharpeRatio: 9})

	best, ok := Best([]Outcome{{Result: low}, {Result: failed}, {Result: high}, {Result: nil}})
	suite.Require().True(ok)
	suite.Equal("high", best.Result.Strategy)
}
