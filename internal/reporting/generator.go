package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/pipeline"
	"options-strategy-lab/internal/storage"
)

// Generator builds reports from stored backtest results.
type Generator struct {
	results storage.BacktestResultStore
	trades  storage.TradeStore

	sufficiency []*pipeline.SufficiencyResult
	now         func() time.Time
}

// NewGenerator creates a report generator. The trade store is optional;
// without it the trades CSV is skipped.
func NewGenerator(results storage.BacktestResultStore, trades storage.TradeStore) *Generator {
	return &Generator{
		results: results,
		trades:  trades,
		now:     time.Now,
	}
}

// WithClock replaces the time source for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithSufficiency attaches per-symbol sufficiency results to the report.
func (g *Generator) WithSufficiency(results []*pipeline.SufficiencyResult) *Generator {
	g.sufficiency = results
	return g
}

// Generate builds the report from stored results.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	all, err := g.results.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	report := &Report{
		GeneratedAt:     g.now().UTC(),
		StrategyMetrics: buildMetricRows(all),
		DataSummary:     buildDataSummary(all),
		DataQuality:     g.buildDataQuality(),
	}

	symbols := map[string]bool{}
	strategies := map[string]bool{}
	for _, r := range all {
		symbols[r.Symbol] = true
		strategies[r.StrategyID] = true
	}
	report.SymbolCount = len(symbols)
	report.StrategyCount = len(strategies)

	return report, nil
}

// WriteArtifacts writes REPORT.md, strategy_results.csv, and trades.csv
// into dir, creating it if needed.
func (g *Generator) WriteArtifacts(ctx context.Context, dir string) error {
	report, err := g.Generate(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "REPORT.md"), []byte(RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "strategy_results.csv"), []byte(RenderResultsCSV(report.StrategyMetrics)), 0o644); err != nil {
		return fmt.Errorf("write results csv: %w", err)
	}

	if g.trades != nil {
		trades, err := g.collectTrades(ctx, report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "trades.csv"), []byte(RenderTradesCSV(trades)), 0o644); err != nil {
			return fmt.Errorf("write trades csv: %w", err)
		}
	}

	return nil
}

func (g *Generator) collectTrades(ctx context.Context, report *Report) ([]*domain.Trade, error) {
	seen := map[string]bool{}
	var symbols []string
	for _, m := range report.StrategyMetrics {
		if !seen[m.Symbol] {
			seen[m.Symbol] = true
			symbols = append(symbols, m.Symbol)
		}
	}
	sort.Strings(symbols)

	var trades []*domain.Trade
	for _, s := range symbols {
		ts, err := g.trades.GetBySymbol(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("trades for %s: %w", s, err)
		}
		trades = append(trades, ts...)
	}
	return trades, nil
}

func buildMetricRows(all []*domain.BacktestResult) []StrategyMetricRow {
	rows := make([]StrategyMetricRow, 0, len(all))
	for _, r := range all {
		rows = append(rows, StrategyMetricRow{
			StrategyID:       r.StrategyID,
			Symbol:           r.Symbol,
			RunID:            r.RunID,
			Trades:           len(r.Trades),
			WinRate:          r.Metrics.WinRate,
			TotalReturn:      r.Metrics.TotalReturn,
			CAGR:             r.Metrics.CAGR,
			Sharpe:           r.Metrics.Sharpe,
			Sortino:          r.Metrics.Sortino,
			MaxDrawdown:      r.Metrics.MaxDrawdown,
			ProfitFactor:     r.Metrics.ProfitFactor,
			StatisticalPower: r.Metrics.StatisticalPower,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StrategyID != rows[j].StrategyID {
			return rows[i].StrategyID < rows[j].StrategyID
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	return rows
}

func buildDataSummary(all []*domain.BacktestResult) DataSummary {
	summary := DataSummary{TotalRuns: len(all)}

	symbols := map[string]bool{}
	for _, r := range all {
		symbols[r.Symbol] = true
		summary.TotalTrades += len(r.Trades)
		if r.Flagged {
			summary.FlaggedRuns++
		}
		if summary.DateRangeStart.IsZero() || r.StartDate.Before(summary.DateRangeStart) {
			summary.DateRangeStart = r.StartDate
		}
		if r.EndDate.After(summary.DateRangeEnd) {
			summary.DateRangeEnd = r.EndDate
		}
	}
	summary.TotalSymbols = len(symbols)
	return summary
}

func (g *Generator) buildDataQuality() DataQualitySection {
	section := DataQualitySection{AllChecksPassed: true}
	for _, sr := range g.sufficiency {
		for _, c := range sr.Checks {
			section.SufficiencyChecks = append(section.SufficiencyChecks, SufficiencyCheckRow{
				Symbol:    sr.Symbol,
				Name:      c.Name,
				Threshold: c.Threshold,
				Actual:    c.Actual,
				Pass:      c.Pass,
			})
			if !c.Pass {
				section.AllChecksPassed = false
			}
		}
		section.IntegrityErrors = append(section.IntegrityErrors, sr.Errors...)
	}
	return section
}
