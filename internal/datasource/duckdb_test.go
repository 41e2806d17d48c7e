package datasource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBSourceTestSuite struct {
	suite.Suite
	dir  string
	bars []types.Bar
}

func TestDuckDBSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBSourceTestSuite))
}

func (suite *DuckDBSourceTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	qqq := mocks.BarsFromCloses("QQQ", start, []float64{100, 101, 102, 103, 104})
	spy := mocks.BarsFromCloses("SPY", start, []float64{400, 401, 402})
	suite.bars = append(qqq, spy...)
}

func (suite *DuckDBSourceTestSuite) roundTrip(name string) *DuckDBSource {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(WriteBars(path, suite.bars, nil))

	source, err := NewDuckDBSource(path, nil)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { source.Close() })

	return source
}

func (suite *DuckDBSourceTestSuite) TestParquetRoundTrip() {
	source := suite.roundTrip("bars.parquet")

	bars, err := source.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 5)
	suite.Equal(100.0, bars[0].Close)
	suite.Equal(104.0, bars[4].Close)
	suite.True(bars[0].Time.Before(bars[4].Time))
	suite.NoError(types.ValidateBars(bars))
}

func (suite *DuckDBSourceTestSuite) TestCSVRoundTrip() {
	source := suite.roundTrip("bars.csv")

	bars, err := source.Bars(context.Background(), "SPY", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal("SPY", bars[0].Symbol)
	suite.Equal(402.0, bars[2].Close)
}

func (suite *DuckDBSourceTestSuite) TestDateBounds() {
	source := suite.roundTrip("bounds.parquet")
	from := suite.bars[1].Time
	to := suite.bars[3].Time

	bars, err := source.Bars(context.Background(), "QQQ", optional.Some(from), optional.Some(to))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal(101.0, bars[0].Close)
	suite.Equal(103.0, bars[2].Close)

	count, err := source.Count(context.Background(), "QQQ", optional.Some(from), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)
}

func (suite *DuckDBSourceTestSuite) TestSymbols() {
	source := suite.roundTrip("symbols.parquet")

	symbols, err := source.Symbols(context.Background())
	suite.Require().NoError(err)
	suite.Equal([]string{"QQQ", "SPY"}, symbols)
}

func (suite *DuckDBSourceTestSuite) TestUnknownSymbolIsEmpty() {
	source := suite.roundTrip("empty.parquet")

	bars, err := source.Bars(context.Background(), "IWM", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Empty(bars)
}

func (suite *DuckDBSourceTestSuite) TestMissingFile() {
	_, err := NewDuckDBSource(filepath.Join(suite.dir, "missing.parquet"), nil)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
}

func (suite *DuckDBSourceTestSuite) TestWriterRequiresInitialize() {
	w := NewBarWriter(filepath.Join(suite.dir, "x.parquet"), nil)

	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(w.Write(suite.bars[0])))

	_, err := w.Finalize()
	suite.Equal(errors.ErrCodeMarketDataWriteFailed, errors.GetCode(err))
	suite.NoError(w.Close())
}
