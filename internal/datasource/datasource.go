// Package datasource loads daily bars from local files or an upstream market
// data provider and prepares them for the indicator layer.
package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// ProviderType names a bar provider in the indices configuration.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderDuckDB  ProviderType = "duckdb"
)

// BarSource yields ordered daily bars for one symbol. Unset bounds are open.
type BarSource interface {
	// Bars returns the bars of symbol between start and end inclusive, oldest first.
	Bars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error)
	// Close releases any resources held by the source.
	Close() error
}

// DefaultLookbackDays is the calendar window fetched for a latest-signal run.
const DefaultLookbackDays = 120

// Latest fetches the most recent bars, enough to cover warmup trading days. It
// fails with an InsufficientDataError unless more than warmup bars come back.
func Latest(ctx context.Context, source BarSource, symbol string, warmup int, now time.Time) ([]types.Bar, error) {
	// roughly 252 trading days per 365 calendar days, with slack for holidays
	days := DefaultLookbackDays
	if need := warmup*3/2 + 30; need > days {
		days = need
	}

	start := types.DateOf(now).AddDate(0, 0, -days)

	bars, err := source.Bars(ctx, symbol, optional.Some(start), optional.Some(now))
	if err != nil {
		return nil, err
	}

	if len(bars) <= warmup {
		return nil, errors.NewInsufficientDataErrorf(warmup+1, len(bars), symbol,
			"%s: %s, %d bars since %s, %d needed", types.ErrInsufficientData, symbol, len(bars), start.Format(time.DateOnly), warmup+1)
	}

	return bars, nil
}
