package metrics

import (
	"math"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
)

func flatCurve(start time.Time, n int, equity float64) []domain.EquityPoint {
	curve := make([]domain.EquityPoint, n)
	for i := range curve {
		curve[i] = domain.EquityPoint{
			Date:   start.AddDate(0, 0, i),
			Equity: equity,
		}
	}
	return curve
}

func closedTrade(pnl float64) *domain.Trade {
	return &domain.Trade{
		TradeID: "t",
		Status:  domain.TradeStatusClosed,
		PnL:     pnl,
	}
}

func TestComputeRiskMetrics_FlatCurve(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 299)
	curve := flatCurve(start, 300, 100000)

	m := ComputeRiskMetrics(curve, nil, start, end, 0.04)

	if m.TotalReturn != 0 {
		t.Errorf("total return = %v, want 0", m.TotalReturn)
	}
	if math.Abs(m.CAGR) > 1e-9 {
		t.Errorf("CAGR = %v, want ~0", m.CAGR)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %v, want 0", m.MaxDrawdown)
	}
	if m.WinRate != 0 {
		t.Errorf("win rate = %v, want 0", m.WinRate)
	}
	if m.AnnualizedVol != 0 {
		t.Errorf("annualized vol = %v, want 0", m.AnnualizedVol)
	}
}

func TestComputeRiskMetrics_RisingCurve(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(2, 0, 0)

	curve := make([]domain.EquityPoint, 500)
	for i := range curve {
		curve[i] = domain.EquityPoint{
			Date:   start.AddDate(0, 0, i),
			Equity: 100000 * (1 + 0.0005*float64(i)),
		}
	}

	m := ComputeRiskMetrics(curve, nil, start, end, 0.0)

	if m.TotalReturn <= 0 {
		t.Errorf("total return = %v, want > 0", m.TotalReturn)
	}
	if m.CAGR <= 0 {
		t.Errorf("CAGR = %v, want > 0", m.CAGR)
	}
	// Two years in the window, CAGR should be below total return.
	if m.CAGR >= m.TotalReturn {
		t.Errorf("CAGR %v should be below total return %v over 2 years", m.CAGR, m.TotalReturn)
	}
}

func TestTradeStats(t *testing.T) {
	trades := []*domain.Trade{
		closedTrade(100),
		closedTrade(300),
		closedTrade(-200),
		closedTrade(0), // zero P&L counts as a loss
	}

	pf, winRate, avgWin, avgLoss := tradeStats(trades)

	if math.Abs(winRate-0.5) > 1e-12 {
		t.Errorf("win rate = %v, want 0.5", winRate)
	}
	if math.Abs(avgWin-200) > 1e-9 {
		t.Errorf("avg win = %v, want 200", avgWin)
	}
	if math.Abs(avgLoss-(-100)) > 1e-9 {
		t.Errorf("avg loss = %v, want -100", avgLoss)
	}
	if math.Abs(pf-2.0) > 1e-9 {
		t.Errorf("profit factor = %v, want 2.0", pf)
	}
}

func TestTradeStats_NoLossesSentinel(t *testing.T) {
	pf, _, _, _ := tradeStats([]*domain.Trade{closedTrade(100), closedTrade(50)})
	if pf != ProfitFactorSentinel {
		t.Errorf("profit factor = %v, want sentinel %v", pf, ProfitFactorSentinel)
	}

	pf, _, _, _ = tradeStats(nil)
	if pf != 0 {
		t.Errorf("profit factor with no trades = %v, want 0", pf)
	}
}

func TestTailStats(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.005, -0.05, 0.02, -0.01, 0.0, 0.015, -0.03, 0.01}

	var95, es := tailStats(returns)

	if var95 >= 0 {
		t.Errorf("VaR95 = %v, want negative", var95)
	}
	if es > var95 {
		t.Errorf("expected shortfall %v should be at or below VaR95 %v", es, var95)
	}
}

func TestStatisticalPower(t *testing.T) {
	if got := statisticalPower(30, 1.0); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("power at thresholds = %v, want 1.0", got)
	}
	if got := statisticalPower(15, 0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("power at half thresholds = %v, want 0.5", got)
	}
	if got := statisticalPower(300, 10); got > 1.0 {
		t.Errorf("power = %v, must not exceed 1.0", got)
	}
	if got := statisticalPower(0, 0); got != 0 {
		t.Errorf("power with nothing = %v, want 0", got)
	}
}

func TestWarnings(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Few trades, short window, calm vol: two advisories.
	w := Warnings(domain.RiskMetrics{AnnualizedVol: 0.1}, 5, start, start.AddDate(0, 3, 0))
	if len(w) != 2 {
		t.Errorf("warnings = %v, want 2 entries", w)
	}

	// Healthy run: none.
	w = Warnings(domain.RiskMetrics{AnnualizedVol: 0.1}, 50, start, start.AddDate(2, 0, 0))
	if len(w) != 0 {
		t.Errorf("warnings = %v, want none", w)
	}

	// High vol only.
	w = Warnings(domain.RiskMetrics{AnnualizedVol: 0.5}, 50, start, start.AddDate(2, 0, 0))
	if len(w) != 1 {
		t.Errorf("warnings = %v, want 1 entry", w)
	}
}

func TestComputePercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := computePercentile(sorted, 0.5); got != 3 {
		t.Errorf("median = %v, want 3", got)
	}
	if got := computePercentile(sorted, 0); got != 1 {
		t.Errorf("p0 = %v, want 1", got)
	}
	if got := computePercentile(sorted, 1); got != 5 {
		t.Errorf("p100 = %v, want 5", got)
	}
	// Interpolated.
	if got := computePercentile(sorted, 0.25); got != 2 {
		t.Errorf("p25 = %v, want 2", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	curve := []domain.EquityPoint{
		{Drawdown: 0},
		{Drawdown: -0.05},
		{Drawdown: -0.12},
		{Drawdown: -0.03},
	}
	if got := maxDrawdown(curve); got != -0.12 {
		t.Errorf("max drawdown = %v, want -0.12", got)
	}
}
