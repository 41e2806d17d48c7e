package datasource

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// DefaultHistoryYears bounds a request with no start date.
const DefaultHistoryYears = 10

// PolygonConfig configures the polygon.io daily aggregate provider.
type PolygonConfig struct {
	APIKey       string        `validate:"required"`
	MaxRetries   uint64        `validate:"lte=10"`
	InitialDelay time.Duration `validate:"gte=0"`
	ShowProgress bool
}

// FetchFunc downloads the daily bars of symbol between start and end inclusive.
type FetchFunc func(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error)

// PolygonProvider implements BarSource on top of the polygon.io aggregates endpoint.
type PolygonProvider struct {
	config PolygonConfig
	client *polygon.Client
	fetch  FetchFunc
	now    func() time.Time
	logger *logger.Logger
}

// NewPolygonProvider validates cfg and creates a provider.
func NewPolygonProvider(cfg PolygonConfig, log *logger.Logger) (*PolygonProvider, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid polygon configuration", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	p := &PolygonProvider{
		config: cfg,
		client: polygon.New(cfg.APIKey),
		now:    time.Now,
		logger: log.Named("polygon"),
	}
	p.fetch = p.listAggs

	return p, nil
}

// WithFetch replaces the upstream call. Used by tests and offline runs.
func (p *PolygonProvider) WithFetch(fetch FetchFunc) *PolygonProvider {
	p.fetch = fetch

	return p
}

// Bars implements BarSource. Transient failures are retried with exponential backoff.
func (p *PolygonProvider) Bars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	to := end.TakeOr(p.now())
	from := start.TakeOr(to.AddDate(-DefaultHistoryYears, 0, 0))

	if from.After(to) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"start %s is after end %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var bars []types.Bar

	operation := func() error {
		result, err := p.fetch(ctx, symbol, from, to)
		if err != nil {
			if !transient(err) {
				return backoff.Permanent(err)
			}

			return err
		}

		bars = result

		return nil
	}

	notify := func(err error, wait time.Duration) {
		p.logger.Warn("Retrying market data fetch",
			zap.String("symbol", symbol),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, p.policy(ctx), notify); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", symbol)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no bars returned for %s", symbol)
	}

	p.logger.Debug("Fetched bars", zap.String("symbol", symbol), zap.Int("count", len(bars)))

	return bars, nil
}

func (p *PolygonProvider) policy(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	if p.config.InitialDelay > 0 {
		exp.InitialInterval = p.config.InitialDelay
	}

	return backoff.WithContext(backoff.WithMaxRetries(exp, p.config.MaxRetries), ctx)
}

// transient reports whether a fetch error is worth retrying.
// Client errors other than rate limiting are final.
func transient(err error) bool {
	if errors.GetCode(err) != errors.ErrCodeUnknown {
		return errors.IsRetryable(err)
	}

	var resp *models.ErrorResponse
	if stderrors.As(err, &resp) {
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
	}

	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return true
}

func (p *PolygonProvider) listAggs(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(50000)

	var bar *progressbar.ProgressBar
	if p.config.ShowProgress {
		total := int(end.Sub(start).Hours()/24) + 1
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", symbol)),
			progressbar.OptionShowCount(),
		)
	}

	iter := p.client.ListAggs(ctx, params)

	var result []types.Bar

	for iter.Next() {
		agg := iter.Item()
		t := time.Time(agg.Timestamp)

		result = append(result, types.Bar{
			Time:   types.DateOf(t),
			Symbol: symbol,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})

		if bar != nil {
			_ = bar.Set(int(t.Sub(start).Hours() / 24))
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Download fetches bars and saves them as parquet under dataDir.
// The file is named SYMBOL_START_END.parquet and its path is returned.
func (p *PolygonProvider) Download(ctx context.Context, symbol string, start, end time.Time, dataDir string) (string, error) {
	bars, err := p.Bars(ctx, symbol, optional.Some(start), optional.Some(end))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", dataDir)
	}

	path := filepath.Join(dataDir, fmt.Sprintf("%s_%s_%s.parquet",
		symbol, start.Format(time.DateOnly), end.Format(time.DateOnly)))

	if err := WriteBars(path, bars, p.logger); err != nil {
		return "", err
	}

	p.logger.Info("Downloaded market data",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
		zap.String("path", path),
	)

	return path, nil
}

// Close implements BarSource.
func (p *PolygonProvider) Close() error {
	return nil
}
