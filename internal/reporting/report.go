package reporting

import "time"

// Report is the research summary generated after a batch of backtests.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	SymbolCount   int
	StrategyCount int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (sufficiency checks per symbol)
	DataQuality DataQualitySection

	// Strategy Metrics (sorted by strategy_id, then symbol)
	StrategyMetrics []StrategyMetricRow
}

// DataQualitySection contains sufficiency checks and integrity errors.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow
	IntegrityErrors   []string
	AllChecksPassed   bool
}

// SufficiencyCheckRow represents one sufficiency criterion for one symbol.
type SufficiencyCheckRow struct {
	Symbol    string
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DataSummary describes the inputs the batch ran over.
type DataSummary struct {
	TotalSymbols   int
	TotalRuns      int
	TotalTrades    int
	FlaggedRuns    int
	DateRangeStart time.Time
	DateRangeEnd   time.Time
}

// StrategyMetricRow is one row of the strategy metrics table, one per
// (strategy, symbol) backtest run.
type StrategyMetricRow struct {
	StrategyID       string
	Symbol           string
	RunID            string
	Trades           int
	WinRate          float64
	TotalReturn      float64
	CAGR             float64
	Sharpe           float64
	Sortino          float64
	MaxDrawdown      float64 // <= 0
	ProfitFactor     float64
	StatisticalPower float64
}
