package engine

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/ndx-rsi/internal/backtest/engine"
	"github.com/rxtech-lab/ndx-rsi/internal/logger"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"go.uber.org/zap"
)

// TradingDaysPerYear converts annual rates and volatilities to bars.
const TradingDaysPerYear = 252

// Position is the open trade owned by the engine.
type Position struct {
	// Signed fraction of capital.
	Size       float64
	EntryPrice float64
	EntryTime  time.Time
	Levels     types.RiskLevels
	Reason     types.Reason
}

// Side is +1 for long and -1 for short.
func (p Position) Side() float64 {
	if p.Size < 0 {
		return -1
	}

	return 1
}

// Return is the per-unit return of closing at price, net of the round trip.
func (p Position) Return(price, commission float64) float64 {
	return (price-p.EntryPrice)/p.EntryPrice*p.Side() - 2*commission
}

// BacktestState is the mutable state of one run. It is owned by a single
// goroutine and mutated only through its transition methods.
type BacktestState struct {
	config engine.Config
	log    *logger.Logger

	position optional.Option[Position]

	equity      float64
	peak        float64
	maxDrawdown float64
	cooldown    int

	trades      []types.ClosedTrade
	wins        int
	losses      int
	grossProfit float64
	grossLoss   float64

	barReturns []float64
	series     []types.DailyRow
	keepSeries bool
}

// NewBacktestState starts a run with unit equity and no position.
func NewBacktestState(config engine.Config, log *logger.Logger, keepSeries bool) *BacktestState {
	return &BacktestState{
		config:     config,
		log:        log,
		position:   optional.None[Position](),
		equity:     1,
		peak:       1,
		keepSeries: keepSeries,
	}
}

// Equity is the current equity multiple.
func (s *BacktestState) Equity() float64 {
	return s.equity
}

// MaxDrawdown is the largest drawdown recorded so far.
func (s *BacktestState) MaxDrawdown() float64 {
	return s.maxDrawdown
}

// Cooldown is the number of bars still blocked for new entries.
func (s *BacktestState) Cooldown() int {
	return s.cooldown
}

// Trades returns the closed trades in exit order.
func (s *BacktestState) Trades() []types.ClosedTrade {
	return s.trades
}

// Position returns the open position, if any.
func (s *BacktestState) Position() optional.Option[Position] {
	return s.position
}

// Size is the signed size held, zero when flat.
func (s *BacktestState) Size() float64 {
	if s.position.IsNone() {
		return 0
	}

	return s.position.Unwrap().Size
}

// PositionContext is the read-only view handed to strategies.
func (s *BacktestState) PositionContext() optional.Option[types.PositionContext] {
	if s.position.IsNone() {
		return optional.None[types.PositionContext]()
	}

	p := s.position.Unwrap()

	return optional.Some(types.PositionContext{
		Direction:   types.DirectionOf(p.Size),
		EntryReason: p.Reason,
		Size:        p.Size,
	})
}

// Drawdown is the fractional decline of equity marked at price from the
// high-water mark. An open same-bar position counts at its mark-to-market
// value, not its realized equity, so the breaker can fire before the losing
// trade closes.
func (s *BacktestState) Drawdown(price float64) float64 {
	live := s.equity

	if !s.config.NextDayExecution && s.position.IsSome() {
		p := s.position.Unwrap()
		live *= 1 + math.Abs(p.Size)*(price-p.EntryPrice)/p.EntryPrice*p.Side()
	}

	if s.peak <= 0 {
		return 0
	}

	return math.Max(0, (s.peak-live)/s.peak)
}

// OpenPosition records a new position entered at bar's close.
func (s *BacktestState) OpenPosition(bar types.Bar, size float64, levels types.RiskLevels, reason types.Reason) {
	s.position = optional.Some(Position{
		Size:       size,
		EntryPrice: bar.Close,
		EntryTime:  bar.Time,
		Levels:     levels,
		Reason:     reason,
	})

	s.log.Debug("Position opened",
		zap.Time("time", bar.Time),
		zap.Float64("size", size),
		zap.Float64("price", bar.Close),
		zap.String("reason", string(reason)),
	)
}

// ClosePosition closes the open position at price and tallies the trade.
// In immediate mode the trade return is booked into equity scaled by size. In
// next-day mode equity is marked to market bar by bar and the trade is only tallied.
func (s *BacktestState) ClosePosition(t time.Time, price float64, exit types.ExitKind) optional.Option[types.ClosedTrade] {
	if s.position.IsNone() {
		return optional.None[types.ClosedTrade]()
	}

	p := s.position.Unwrap()
	ret := p.Return(price, s.config.Commission)

	trade := types.ClosedTrade{
		EntryTime:   p.EntryTime,
		ExitTime:    t,
		Size:        p.Size,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   price,
		EntryReason: p.Reason,
		Exit:        exit,
		Return:      ret,
	}

	s.trades = append(s.trades, trade)

	if ret > 0 {
		s.wins++
		s.grossProfit += ret
	} else {
		s.losses++
		s.grossLoss += -ret
	}

	if !s.config.NextDayExecution {
		s.equity *= 1 + math.Abs(p.Size)*ret
		s.updateDrawdown()
	}

	s.position = optional.None[Position]()

	s.log.Debug("Position closed",
		zap.Time("time", t),
		zap.String("exit", string(exit)),
		zap.Float64("price", price),
		zap.Float64("return", ret),
	)

	return optional.Some(trade)
}

// Resize changes the size of the open position and keeps its entry.
func (s *BacktestState) Resize(size float64) {
	if s.position.IsNone() {
		return
	}

	p := s.position.Unwrap()
	p.Size = size
	s.position = optional.Some(p)
}

// Liquidate force-closes at bar's close and starts the cooldown.
func (s *BacktestState) Liquidate(bar types.Bar, drawdown float64) {
	if s.config.NextDayExecution {
		s.ChargeCommission()
	}

	s.ClosePosition(bar.Time, bar.Close, types.ExitCircuitBreaker)
	s.cooldown = s.config.CircuitBreaker.CooldownBars

	s.log.Warn("Circuit breaker triggered",
		zap.Time("time", bar.Time),
		zap.Float64("drawdown", drawdown),
		zap.Float64("threshold", s.config.CircuitBreaker.DrawdownThreshold),
		zap.Int("cooldown_bars", s.cooldown),
	)
}

// ConsumeCooldown reports whether new entries are blocked on this bar and counts the bar.
func (s *BacktestState) ConsumeCooldown() bool {
	if s.cooldown <= 0 {
		return false
	}

	s.cooldown--

	return true
}

// ApplyBarReturn marks equity to market with a close-to-close return at size.
func (s *BacktestState) ApplyBarReturn(size, ret float64) {
	s.equity *= 1 + size*ret
	s.updateDrawdown()
}

// ChargeCommission pays one round trip on a position change.
func (s *BacktestState) ChargeCommission() {
	s.equity *= 1 - 2*s.config.Commission
	s.updateDrawdown()
}

// AccrueFlat compounds one day of the risk-free rate into idle equity.
func (s *BacktestState) AccrueFlat() {
	if !s.config.AccrueRiskFreeWhenFlat || s.config.RiskFreeRate == 0 {
		return
	}

	s.equity *= 1 + DailyRate(s.config.RiskFreeRate)
	s.updateDrawdown()
}

// RecordBar appends the bar's equity change and, when requested, its series row.
func (s *BacktestState) RecordBar(bar types.Bar, prevEquity, position, benchmarkReturn float64) {
	if prevEquity > 0 {
		s.barReturns = append(s.barReturns, s.equity/prevEquity-1)
	}

	if !s.keepSeries {
		return
	}

	s.series = append(s.series, types.DailyRow{
		Date:                      bar.Time,
		Equity:                    s.equity,
		CumulativeStrategyReturn:  s.equity - 1,
		CumulativeBenchmarkReturn: benchmarkReturn,
		Position:                  position,
	})
}

func (s *BacktestState) updateDrawdown() {
	if s.equity > s.peak {
		s.peak = s.equity
	}

	if s.peak > 0 {
		if dd := (s.peak - s.equity) / s.peak; dd > s.maxDrawdown {
			s.maxDrawdown = dd
		}
	}
}

// DailyRate converts an annual rate to its daily compounding equivalent.
func DailyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/TradingDaysPerYear) - 1
}
