package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"go.uber.org/zap"
)

// barColumns are the columns every bar file must carry.
var barColumns = []string{"time", "symbol", "open", "high", "low", "close", "volume"}

// DuckDBSource serves bars from parquet or CSV files through an in-memory DuckDB view.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBSource opens an in-memory database and exposes path as the market_data view.
// path may be a glob. Files ending in .csv are read with read_csv_auto, anything else as parquet.
func NewDuckDBSource(path string, log *logger.Logger) (*DuckDBSource, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	d := &DuckDBSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := d.initialize(path); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

func (d *DuckDBSource) initialize(path string) error {
	d.logger.Debug("Initializing DuckDB bar source", zap.String("path", path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`CREATE OR REPLACE VIEW market_data AS SELECT * FROM %s('%s');`,
		reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load %s", path)
	}

	return nil
}

func (d *DuckDBSource) where(q squirrel.SelectBuilder, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if symbol != "" {
		q = q.Where(squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		q = q.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		q = q.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return q
}

// Bars implements BarSource. An empty symbol matches every row.
func (d *DuckDBSource) Bars(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	query, args, err := d.where(d.sq.Select(barColumns...).From("market_data"), symbol, start, end).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	result := make([]types.Bar, 0, 1024)

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		result = append(result, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	if len(result) == 0 {
		d.logger.Debug("No bars matched", zap.String("symbol", symbol))
	}

	return result, nil
}

// Count returns the number of rows matching the filter.
func (d *DuckDBSource) Count(ctx context.Context, symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.where(d.sq.Select("COUNT(*)").From("market_data"), symbol, start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// Symbols lists the distinct symbols in the loaded files.
func (d *DuckDBSource) Symbols(ctx context.Context) ([]string, error) {
	query, args, err := d.sq.Select("DISTINCT symbol").From("market_data").OrderBy("symbol").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, s)
	}

	return symbols, rows.Err()
}

// Close implements BarSource.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}
