package datasource

import (
	"context"
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/mocks"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DatasourceTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockBarSource
	start  time.Time
}

func TestDatasourceSuite(t *testing.T) {
	suite.Run(t, new(DatasourceTestSuite))
}

func (suite *DatasourceTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockBarSource(suite.ctrl)
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *DatasourceTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *DatasourceTestSuite) TestLatestUsesDefaultLookback() {
	now := time.Date(2024, 6, 3, 18, 30, 0, 0, time.UTC)
	want := time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC)

	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", optional.Some(want), optional.Some(now)).
		Return(mocks.GenerateDaily("QQQ", 80), nil)

	bars, err := Latest(context.Background(), suite.source, "QQQ", 50, now)
	suite.Require().NoError(err)
	suite.Len(bars, 80)
}

func (suite *DatasourceTestSuite) TestLatestWidensForLongWarmup() {
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, start, _ optional.Option[time.Time]) ([]types.Bar, error) {
			// 200 warmup bars need 330 calendar days
			suite.Equal(now.AddDate(0, 0, -330), start.Unwrap())

			return mocks.GenerateDaily("QQQ", 230), nil
		})

	bars, err := Latest(context.Background(), suite.source, "QQQ", 200, now)
	suite.Require().NoError(err)
	suite.Len(bars, 230)
}

func (suite *DatasourceTestSuite) TestLatestShortHistory() {
	now := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).
		Return(mocks.GenerateDaily("QQQ", 50), nil)

	_, err := Latest(context.Background(), suite.source, "QQQ", 50, now)
	suite.Require().Error(err)
	suite.True(errors.IsInsufficientDataError(err))
	suite.ErrorContains(err, types.ErrInsufficientData)

	var short *errors.InsufficientDataError
	suite.Require().True(errors.As(err, &short))
	suite.Equal(51, short.Required)
	suite.Equal(50, short.Actual)
	suite.Equal("QQQ", short.Symbol)
}

func (suite *DatasourceTestSuite) TestLatestPassesSourceErrors() {
	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).
		Return(nil, errors.New(errors.ErrCodeDataSourceUnavailable, "offline"))

	_, err := Latest(context.Background(), suite.source, "QQQ", 50, time.Now())
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
	suite.False(errors.IsInsufficientDataError(err))
}

func (suite *DatasourceTestSuite) TestCachedSourceHitsUnderlyingOnce() {
	bars := mocks.BarsFromCloses("QQQ", suite.start, []float64{1, 2, 3})
	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).
		Return(bars, nil).
		Times(1)

	cached := NewCachedSource(suite.source)

	first, err := cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	first[0].Close = 999

	second, err := cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(1.0, second[0].Close)
}

func (suite *DatasourceTestSuite) TestCachedSourceKeysOnRange() {
	suite.source.EXPECT().
		Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(2)

	cached := NewCachedSource(suite.source)

	_, _ = cached.Bars(context.Background(), "QQQ", optional.Some(suite.start), optional.None[time.Time]())
	_, _ = cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	_, _ = cached.Bars(context.Background(), "QQQ", optional.Some(suite.start), optional.None[time.Time]())
}

func (suite *DatasourceTestSuite) TestCachedSourceCachesErrors() {
	boom := stderrors.New("boom")
	suite.source.EXPECT().Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).Return(nil, boom).Times(1)

	cached := NewCachedSource(suite.source)

	_, err := cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.ErrorIs(err, boom)
	_, err = cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.ErrorIs(err, boom)
}

func (suite *DatasourceTestSuite) TestCachedSourceSkipsCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite.source.EXPECT().Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).Return(nil, context.Canceled).Times(1)
	suite.source.EXPECT().Bars(gomock.Any(), "QQQ", gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

	cached := NewCachedSource(suite.source)

	_, err := cached.Bars(ctx, "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.Error(err)

	_, err = cached.Bars(context.Background(), "QQQ", optional.None[time.Time](), optional.None[time.Time]())
	suite.NoError(err)
}

func (suite *DatasourceTestSuite) TestCachedSourceClose() {
	suite.source.EXPECT().Close().Return(nil)
	suite.NoError(NewCachedSource(suite.source).Close())
}

func (suite *DatasourceTestSuite) TestCleanSortsAndDeduplicates() {
	bars := mocks.BarsFromCloses("QQQ", suite.start, []float64{10, 11, 12})
	dup := bars[1]
	dup.Close = 11.5
	dup.Time = dup.Time.Add(16 * time.Hour)

	input := []types.Bar{bars[2], bars[0], bars[1], dup}

	cleaned, ok := Clean(input)
	suite.True(ok)
	suite.Require().Len(cleaned, 3)
	suite.Equal(10.0, cleaned[0].Close)
	suite.Equal(11.5, cleaned[1].Close)
	suite.Equal(types.DateOf(dup.Time), cleaned[1].Time)
	suite.NoError(types.ValidateBars(cleaned))
}

func (suite *DatasourceTestSuite) TestCleanFlagsIncompleteTail() {
	bars := mocks.BarsFromCloses("QQQ", suite.start, []float64{10, 11, 12, 13, 14})
	bars[3].Close = math.NaN()

	cleaned, ok := Clean(bars)
	suite.False(ok)
	suite.Len(cleaned, 4)

	bars = mocks.BarsFromCloses("QQQ", suite.start, []float64{10, 11, 12, 13, 14})
	bars[0].Close = 0

	cleaned, ok = Clean(bars)
	suite.True(ok)
	suite.Len(cleaned, 4)
}

func (suite *DatasourceTestSuite) TestPreprocessAttachesDefaultColumns() {
	prepared, err := Preprocess(mocks.GenerateDaily("QQQ", 60))
	suite.Require().NoError(err)
	suite.True(prepared.OK)
	suite.Zero(prepared.Dropped)
	suite.True(prepared.Frame.Has("rsi_9", "rsi_14", "rsi_24", "ma5", "ma20", "ma50", "volume_ratio"))
}

func (suite *DatasourceTestSuite) TestPreprocessShortHistory() {
	prepared, err := Preprocess(mocks.GenerateDaily("QQQ", MinPreparedBars-1))
	suite.Require().NoError(err)
	suite.False(prepared.OK)
	suite.Equal(MinPreparedBars-1, prepared.Frame.Len())
}
