package metrics

import (
	"math"
	"sort"
	"time"

	"options-strategy-lab/internal/domain"
)

// Thresholds and constants used by the risk statistics.
const (
	// TradingDaysPerYear annualizes daily return statistics.
	TradingDaysPerYear = 252.0

	// ProfitFactorSentinel stands in for gross wins divided by zero losses.
	ProfitFactorSentinel = 999.0

	// MinTradesForPower and MinYearsForPower are the thresholds the
	// statistical power score measures a run against.
	MinTradesForPower = 30
	MinYearsForPower  = 1.0

	// HighVolWarnThreshold triggers the high-volatility advisory.
	HighVolWarnThreshold = 0.40
)

// ComputeRiskMetrics derives the full risk statistics of one completed run.
// The equity curve must be in chronological order; trades may be in any order.
func ComputeRiskMetrics(curve []domain.EquityPoint, trades []*domain.Trade, start, end time.Time, riskFreeRate float64) domain.RiskMetrics {
	if len(curve) == 0 {
		return domain.RiskMetrics{}
	}

	initial := curve[0].Equity
	final := curve[len(curve)-1].Equity

	var m domain.RiskMetrics
	if initial > 0 {
		m.TotalReturn = (final - initial) / initial
	}

	years := yearsBetween(start, end)
	if years > 0 && 1+m.TotalReturn > 0 {
		m.CAGR = math.Pow(1+m.TotalReturn, 1/years) - 1
	}

	returns := dailyReturns(curve)
	m.AnnualizedVol = computeStddev(returns, computeMean(returns)) * math.Sqrt(TradingDaysPerYear)

	if m.AnnualizedVol > 0 {
		m.Sharpe = (m.CAGR - riskFreeRate) / m.AnnualizedVol
	}
	if downside := downsideDeviation(returns) * math.Sqrt(TradingDaysPerYear); downside > 0 {
		m.Sortino = (m.CAGR - riskFreeRate) / downside
	}

	m.VaR95, m.ExpectedShortfall = tailStats(returns)
	m.MaxDrawdown = maxDrawdown(curve)
	if m.MaxDrawdown < 0 {
		m.Calmar = m.CAGR / -m.MaxDrawdown
	}

	closed := closedTrades(trades)
	m.ProfitFactor, m.WinRate, m.AvgWin, m.AvgLoss = tradeStats(closed)
	m.StatisticalPower = statisticalPower(len(closed), years)

	return m
}

// Warnings returns the advisory strings for a run: low trade count, short
// duration, high volatility. Never fatal.
func Warnings(m domain.RiskMetrics, closedTrades int, start, end time.Time) []string {
	var warnings []string

	if closedTrades < MinTradesForPower {
		warnings = append(warnings, "low trade count: results based on fewer than 30 closed trades")
	}
	if yearsBetween(start, end) < MinYearsForPower {
		warnings = append(warnings, "short backtest duration: less than one year of data")
	}
	if m.AnnualizedVol > HighVolWarnThreshold {
		warnings = append(warnings, "high annualized volatility: equity curve exceeds 40% vol")
	}

	return warnings
}

// yearsBetween measures calendar years between two dates.
func yearsBetween(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours() / (24 * 365.25)
}

// dailyReturns converts the equity curve into simple bar-over-bar returns.
func dailyReturns(curve []domain.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	return returns
}

// maxDrawdown returns the most negative drawdown on the curve, <= 0.
func maxDrawdown(curve []domain.EquityPoint) float64 {
	worst := 0.0
	for _, p := range curve {
		if p.Drawdown < worst {
			worst = p.Drawdown
		}
	}
	return worst
}

// tailStats returns the historical VaR95 (5th percentile of daily returns)
// and expected shortfall (mean of returns at or below VaR95).
func tailStats(returns []float64) (var95, es float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	var95 = computePercentile(sorted, 0.05)

	var tailSum float64
	var tailN int
	for _, r := range sorted {
		if r <= var95 {
			tailSum += r
			tailN++
		}
	}
	if tailN > 0 {
		es = tailSum / float64(tailN)
	}
	return var95, es
}

// closedTrades filters out trades still open at end of run.
func closedTrades(trades []*domain.Trade) []*domain.Trade {
	var closed []*domain.Trade
	for _, t := range trades {
		if t.Status != domain.TradeStatusOpen {
			closed = append(closed, t)
		}
	}
	return closed
}

// tradeStats computes profit factor, win rate, and average win/loss over
// closed trades. Zero-P&L trades count as losses.
func tradeStats(closed []*domain.Trade) (profitFactor, winRate, avgWin, avgLoss float64) {
	if len(closed) == 0 {
		return 0, 0, 0, 0
	}

	var grossWins, grossLosses float64
	var wins, losses int
	for _, t := range closed {
		if t.IsWin() {
			wins++
			grossWins += t.PnL
		} else {
			losses++
			grossLosses += -t.PnL
		}
	}

	winRate = float64(wins) / float64(len(closed))
	if wins > 0 {
		avgWin = grossWins / float64(wins)
	}
	if losses > 0 {
		avgLoss = -grossLosses / float64(losses)
	}

	switch {
	case grossLosses > 0:
		profitFactor = grossWins / grossLosses
	case grossWins > 0:
		profitFactor = ProfitFactorSentinel
	default:
		profitFactor = 0
	}
	return profitFactor, winRate, avgWin, avgLoss
}

// statisticalPower blends trade count and duration against the minimum
// thresholds, each capped at full weight. Result lies in [0,1].
func statisticalPower(trades int, years float64) float64 {
	tradeScore := math.Min(float64(trades)/float64(MinTradesForPower), 1)
	yearScore := math.Min(years/MinYearsForPower, 1)
	return 0.5*tradeScore + 0.5*yearScore
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// downsideDeviation is the standard deviation of negative returns only.
func downsideDeviation(returns []float64) float64 {
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	return computeStddev(negatives, computeMean(negatives))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC. p is the percentile (0.05 = 5th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
