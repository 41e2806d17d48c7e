package engine

import (
	"math"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

const (
	// volatilityEpsilon keeps the Sharpe denominator away from zero.
	volatilityEpsilon = 1e-8
	// minYears bounds the annualization exponent on very short runs.
	minYears = 0.1
)

// Years is the calendar span between two bars in years, never below minYears.
func Years(start, end time.Time) float64 {
	days := types.DateOf(end).Sub(types.DateOf(start)).Hours() / 24

	return math.Max(days/365, minYears)
}

// AnnualizedReturn compounds total over years.
func AnnualizedReturn(total, years float64) float64 {
	if 1+total <= 0 {
		return -1
	}

	return math.Pow(1+total, 1/years) - 1
}

// AnnualizedVolatility is the sample standard deviation of per-bar returns scaled to a year.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return volatilityEpsilon
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}

	return math.Sqrt(ss/float64(len(returns)-1)) * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio is the excess annualized return per unit of annualized volatility.
// A volatility indistinguishable from zero yields 0.
func SharpeRatio(total float64, returns []float64, years, riskFree float64) float64 {
	vol := AnnualizedVolatility(returns)
	if vol < 1e-12 {
		return 0
	}

	return (AnnualizedReturn(total, years) - riskFree) / (vol + volatilityEpsilon)
}

// MaxDrawdownOf is the largest peak-to-trough decline of an equity path.
func MaxDrawdownOf(path []float64) float64 {
	var peak, worst float64

	for _, v := range path {
		if v > peak {
			peak = v
		}

		if peak > 0 {
			worst = math.Max(worst, (peak-v)/peak)
		}
	}

	return worst
}

// Metrics summarizes a finished run.
func (s *BacktestState) Metrics(years float64) types.PerformanceMetrics {
	total := s.equity - 1

	winRate := 0.0
	if n := s.wins + s.losses; n > 0 {
		winRate = float64(s.wins) / float64(n)
	}

	profitFactor := types.ProfitFactorSentinel
	if s.grossLoss > 0 {
		profitFactor = s.grossProfit / s.grossLoss
	}

	return types.PerformanceMetrics{
		TotalReturn:  total,
		MaxDrawdown:  s.maxDrawdown,
		SharpeRatio:  SharpeRatio(total, s.barReturns, years, s.config.RiskFreeRate),
		WinRate:      winRate,
		TotalTrades:  len(s.trades),
		ProfitFactor: profitFactor,
	}.Rounded()
}

// Benchmark is buy-and-hold over closes, which must start at the first traded bar.
func Benchmark(closes []float64, years, riskFree float64) types.BenchmarkMetrics {
	if len(closes) == 0 || closes[0] <= 0 {
		return types.BenchmarkMetrics{}
	}

	path := make([]float64, len(closes))
	returns := make([]float64, 0, len(closes))

	for i, c := range closes {
		path[i] = c / closes[0]

		if i > 0 && closes[i-1] > 0 {
			returns = append(returns, c/closes[i-1]-1)
		}
	}

	total := path[len(path)-1] - 1

	return types.BenchmarkMetrics{
		TotalReturn: total,
		MaxDrawdown: MaxDrawdownOf(path),
		SharpeRatio: SharpeRatio(total, returns, years, riskFree),
	}.Rounded()
}
