package domain

import "time"

// EquityPoint is one point of the simulated equity curve.
// Points are append-only and ordered by date; Drawdown is always <= 0.
type EquityPoint struct {
	Date       time.Time
	Equity     float64
	Drawdown   float64 // (equity - peak) / peak, <= 0
	TradeCount int     // cumulative closed trades up to this point
}

// RiskMetrics holds the derived statistics of a completed backtest run.
type RiskMetrics struct {
	TotalReturn       float64
	CAGR              float64
	AnnualizedVol     float64
	Sharpe            float64
	Sortino           float64
	ProfitFactor      float64
	WinRate           float64
	AvgWin            float64
	AvgLoss           float64
	VaR95             float64 // historical 5th percentile of daily returns
	ExpectedShortfall float64 // mean of returns at or below VaR95
	MaxDrawdown       float64 // <= 0
	Calmar            float64
	StatisticalPower  float64 // [0,1], blends trade count and years traded
}

// BacktestResult aggregates everything produced by one simulation run.
// Produced once per run and never mutated after construction.
type BacktestResult struct {
	RunID       string
	Symbol      string
	StrategyID  string
	StartDate   time.Time
	EndDate     time.Time
	EquityCurve []EquityPoint
	Trades      []*Trade
	Metrics     RiskMetrics
	Warnings    []string // advisory, non-fatal
	Flagged     bool     // true when upstream data was empty or unusable
}
