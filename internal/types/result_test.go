package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ResultTestSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func (suite *ResultTestSuite) TestRound4() {
	suite.Equal(0.1235, Round4(0.123456))
	suite.Equal(-0.0001, Round4(-0.00006))
	suite.Equal(99.0, Round4(ProfitFactorSentinel))
}

func (suite *ResultTestSuite) TestSetMetricsFillsFlattenedCopy() {
	r := &Result{}
	m := PerformanceMetrics{TotalReturn: 0.12, WinRate: 0.5, TotalTrades: 4, ProfitFactor: 1.5}
	r.SetMetrics(m)
	suite.Equal(m, r.Metrics)
	suite.Equal(0.12, r.TotalReturn)
	suite.Equal(4, r.TotalTrades)
}

func (suite *ResultTestSuite) TestJSONHasNestedAndTopLevelFields() {
	r := &Result{ID: "run"}
	r.SetMetrics(PerformanceMetrics{TotalReturn: 0.2, TotalTrades: 3})

	data, err := json.Marshal(r)
	suite.Require().NoError(err)

	var decoded map[string]any
	suite.Require().NoError(json.Unmarshal(data, &decoded))
	suite.Equal(0.2, decoded["total_return"])
	suite.Contains(decoded, "strategy")
	suite.Contains(decoded, "benchmark")
	suite.NotContains(decoded, "error")
}

func (suite *ResultTestSuite) TestInsufficientDataResult() {
	r := InsufficientDataResult("id", "NDX_short_term")
	suite.True(r.Failed())
	suite.Equal(ErrInsufficientData, r.Error)
	suite.Zero(r.Metrics)
}

func (suite *ResultTestSuite) TestWriteResults() {
	path := filepath.Join(suite.T().TempDir(), "results.yaml")
	r := &Result{ID: "a", Strategy: "EMA_cross_v1"}
	r.SetMetrics(PerformanceMetrics{TotalReturn: 0.05, TotalTrades: 1})

	suite.Require().NoError(WriteResults(path, []*Result{r}))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded []map[string]any
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Len(decoded, 1)
	suite.Equal("EMA_cross_v1", decoded[0]["strategy_name"])
	suite.Equal(0.05, decoded[0]["total_return"])
}
