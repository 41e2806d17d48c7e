package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

// Style definitions.
var (
	TitleStyle  = lipgloss.NewStyle().Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	FooterStyle = lipgloss.NewStyle().Faint(true)
)

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// Comparison renders the strategy against buy-and-hold. A failed result
// renders its error instead of metrics.
func Comparison(result *types.Result) string {
	if result.Failed() {
		return ErrorStyle.Render("Error: " + result.Error)
	}

	s, b := result.Metrics, result.Benchmark

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Metric", "Strategy", "Benchmark", "Diff").
		Row("Total return", percent(s.TotalReturn), percent(b.TotalReturn), signedPercent(s.TotalReturn-b.TotalReturn)).
		Row("Max drawdown", percent(s.MaxDrawdown), percent(b.MaxDrawdown), signedPercent(s.MaxDrawdown-b.MaxDrawdown)).
		Row("Sharpe ratio", fmt.Sprintf("%.4f", s.SharpeRatio), fmt.Sprintf("%.4f", b.SharpeRatio), fmt.Sprintf("%+.4f", s.SharpeRatio-b.SharpeRatio))

	title := fmt.Sprintf("Backtest %s vs buy and hold", result.Strategy)
	if result.Symbol != "" {
		title = fmt.Sprintf("Backtest %s on %s vs buy and hold", result.Strategy, result.Symbol)
	}

	footer := fmt.Sprintf("Win rate %s | Trades %d | Profit factor %.2f", percent(s.WinRate), s.TotalTrades, s.ProfitFactor)

	return strings.Join([]string{
		TitleStyle.Render(title),
		t.String(),
		FooterStyle.Render(footer),
	}, "\n")
}

// Leaderboard renders one row per result, failed runs included.
func Leaderboard(results []*types.Result) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Strategy", "Return", "Max DD", "Sharpe", "Trades", "Win rate", "Benchmark")

	for _, r := range results {
		if r.Failed() {
			t.Row(r.Strategy, r.Error, "", "", "", "", "")

			continue
		}

		t.Row(
			r.Strategy,
			percent(r.Metrics.TotalReturn),
			percent(r.Metrics.MaxDrawdown),
			fmt.Sprintf("%.4f", r.Metrics.SharpeRatio),
			fmt.Sprintf("%d", r.Metrics.TotalTrades),
			percent(r.Metrics.WinRate),
			percent(r.Benchmark.TotalReturn),
		)
	}

	return t.String()
}
