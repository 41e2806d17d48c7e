package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
	"go.uber.org/zap"
)

// Format is the file format of an export.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

const insertBatch = 500

// SeriesWriter collects the daily series and closed trades of runs in an
// in-memory DuckDB database and exports them as files.
type SeriesWriter struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewSeriesWriter opens the database and creates the tables.
func NewSeriesWriter(log *logger.Logger) (*SeriesWriter, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to connect to database", err)
	}

	w := &SeriesWriter{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := w.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return w, nil
}

func (w *SeriesWriter) initialize() error {
	statements := []string{`
		CREATE TABLE IF NOT EXISTS daily_series (
			run_id TEXT,
			strategy TEXT,
			bar_date DATE,
			equity DOUBLE,
			cumulative_strategy_return DOUBLE,
			cumulative_benchmark_return DOUBLE,
			position_size DOUBLE
		)`, `
		CREATE TABLE IF NOT EXISTS trades (
			run_id TEXT,
			strategy TEXT,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			position_size DOUBLE,
			entry_price DOUBLE,
			exit_price DOUBLE,
			entry_reason TEXT,
			exit_kind TEXT,
			trade_return DOUBLE
		)`,
	}

	for _, stmt := range statements {
		if _, err := w.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to create tables", err)
		}
	}

	return nil
}

// Add records the series and trades of result. Failed results are skipped.
func (w *SeriesWriter) Add(result *types.Result) error {
	if result.Failed() {
		w.logger.Debug("Skipping failed result", zap.String("strategy", result.Strategy), zap.String("error", result.Error))

		return nil
	}

	for start := 0; start < len(result.Series); start += insertBatch {
		end := min(start+insertBatch, len(result.Series))

		q := w.sq.Insert("daily_series").
			Columns("run_id", "strategy", "bar_date", "equity", "cumulative_strategy_return", "cumulative_benchmark_return", "position_size")

		for _, row := range result.Series[start:end] {
			q = q.Values(result.ID, result.Strategy, row.Date, row.Equity, row.CumulativeStrategyReturn, row.CumulativeBenchmarkReturn, row.Position)
		}

		if _, err := q.RunWith(w.db).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert series", err)
		}
	}

	for start := 0; start < len(result.Trades); start += insertBatch {
		end := min(start+insertBatch, len(result.Trades))

		q := w.sq.Insert("trades").
			Columns("run_id", "strategy", "entry_time", "exit_time", "position_size", "entry_price", "exit_price", "entry_reason", "exit_kind", "trade_return")

		for _, t := range result.Trades[start:end] {
			q = q.Values(result.ID, result.Strategy, t.EntryTime, t.ExitTime, t.Size, t.EntryPrice, t.ExitPrice, string(t.EntryReason), string(t.Exit), t.Return)
		}

		if _, err := q.RunWith(w.db).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to insert trades", err)
		}
	}

	return nil
}

// Count returns the number of rows in table.
func (w *SeriesWriter) Count(table string) (int, error) {
	var n int

	query, args, err := w.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	if err := w.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count %s", table)
	}

	return n, nil
}

// Export writes series.<ext> and trades.<ext> into dir and returns their paths.
func (w *SeriesWriter) Export(dir string, format Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create %s", dir)
	}

	copyFormat := "FORMAT PARQUET"
	if format == FormatCSV {
		copyFormat = "FORMAT CSV, HEADER"
	}

	tables := []struct{ table, file, order string }{
		{"daily_series", "series", "run_id, bar_date"},
		{"trades", "trades", "run_id, entry_time"},
	}

	paths := make([]string, 0, len(tables))

	for _, t := range tables {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", t.file, format))

		query := fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY %s) TO '%s' (%s)`,
			t.table, t.order, strings.ReplaceAll(path, "'", "''"), copyFormat)
		if _, err := w.db.Exec(query); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export %s", t.table)
		}

		paths = append(paths, path)
	}

	w.logger.Info("Exported backtest series", zap.Strings("files", paths))

	return paths, nil
}

// Close releases the database.
func (w *SeriesWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}

	return w.db.Close()
}

// ExportResults writes the series and trades of results into dir.
func ExportResults(results []*types.Result, dir string, format Format, log *logger.Logger) ([]string, error) {
	w, err := NewSeriesWriter(log)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	for _, r := range results {
		if err := w.Add(r); err != nil {
			return nil, err
		}
	}

	return w.Export(dir, format)
}
