package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInsufficientData is the sentinel stored in Result.Error when the bar series is
// shorter than the strategy's warm-up.
const ErrInsufficientData = "insufficient_data"

// ProfitFactorSentinel replaces an infinite profit factor when no trade lost money.
const ProfitFactorSentinel = 99.0

type PerformanceMetrics struct {
	// Final equity minus one.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Largest peak-to-trough fractional decline of equity.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// (annualized return - risk free) / annualized volatility.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// wins / (wins + losses), zero without trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Count of closed trades.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// gross profit / gross loss, ProfitFactorSentinel when gross loss is zero.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
}

type BenchmarkMetrics struct {
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
}

// ExitKind records which rule closed a trade.
type ExitKind string

const (
	ExitStopLoss       ExitKind = "stop_loss"
	ExitTakeProfit     ExitKind = "take_profit"
	ExitTrendBreak     ExitKind = "trend_break"
	ExitCircuitBreaker ExitKind = "circuit_breaker"
	ExitSignal         ExitKind = "signal"
)

// ClosedTrade is one round trip, kept in memory for the duration of a run.
type ClosedTrade struct {
	EntryTime   time.Time `yaml:"entry_time" json:"entry_time"`
	ExitTime    time.Time `yaml:"exit_time" json:"exit_time"`
	Size        float64   `yaml:"size" json:"size"`
	EntryPrice  float64   `yaml:"entry_price" json:"entry_price"`
	ExitPrice   float64   `yaml:"exit_price" json:"exit_price"`
	EntryReason Reason    `yaml:"entry_reason" json:"entry_reason"`
	Exit        ExitKind  `yaml:"exit" json:"exit"`
	// Return net of the round-trip commission.
	Return float64 `yaml:"return" json:"return"`
}

// DailyRow is one bar of the optional daily series.
type DailyRow struct {
	Date                      time.Time `yaml:"date" json:"date"`
	Equity                    float64   `yaml:"equity" json:"equity"`
	CumulativeStrategyReturn  float64   `yaml:"cumulative_strategy_return" json:"cumulative_strategy_return"`
	CumulativeBenchmarkReturn float64   `yaml:"cumulative_benchmark_return" json:"cumulative_benchmark_return"`
	Position                  float64   `yaml:"position" json:"position"`
}

// Result is the outcome of one backtest run. Callers must check Error before
// reading any metric: when it is set the metrics are zero values.
type Result struct {
	ID        string    `yaml:"id" json:"id"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Symbol    string    `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Strategy  string    `yaml:"strategy_name" json:"strategy_name"`
	Error     string    `yaml:"error,omitempty" json:"error,omitempty"`

	// Flattened copy of Metrics for older consumers of the result file.
	PerformanceMetrics `yaml:",inline" json:",inline"`

	Metrics   PerformanceMetrics `yaml:"strategy" json:"strategy"`
	Benchmark BenchmarkMetrics   `yaml:"benchmark" json:"benchmark"`

	Trades []ClosedTrade `yaml:"trades,omitempty" json:"trades,omitempty"`
	Series []DailyRow    `yaml:"-" json:"-"`
}

// InsufficientDataResult builds the sentinel result.
func InsufficientDataResult(id, strategy string) *Result {
	return &Result{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Strategy:  strategy,
		Error:     ErrInsufficientData,
	}
}

// Failed reports whether the result carries an error sentinel.
func (r *Result) Failed() bool {
	return r.Error != ""
}

// SetMetrics stores m in both the nested and the flattened fields.
func (r *Result) SetMetrics(m PerformanceMetrics) {
	r.Metrics = m
	r.PerformanceMetrics = m
}

// Round4 rounds a ratio to 4 decimal places for display stability.
func Round4(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(4).Float64()

	return f
}

// Rounded returns a copy with every ratio rounded to 4 decimals.
func (m PerformanceMetrics) Rounded() PerformanceMetrics {
	return PerformanceMetrics{
		TotalReturn:  Round4(m.TotalReturn),
		MaxDrawdown:  Round4(m.MaxDrawdown),
		SharpeRatio:  Round4(m.SharpeRatio),
		WinRate:      Round4(m.WinRate),
		TotalTrades:  m.TotalTrades,
		ProfitFactor: Round4(m.ProfitFactor),
	}
}

// Rounded returns a copy with every ratio rounded to 4 decimals.
func (m BenchmarkMetrics) Rounded() BenchmarkMetrics {
	return BenchmarkMetrics{
		TotalReturn: Round4(m.TotalReturn),
		MaxDrawdown: Round4(m.MaxDrawdown),
		SharpeRatio: Round4(m.SharpeRatio),
	}
}

// WriteResults writes results to path as YAML.
func WriteResults(path string, results []*Result) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}

	return nil
}
