package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage/memory"
)

func storedResult(runID, strategyID string, cagr, dd float64, flagged bool) *domain.BacktestResult {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.BacktestResult{
		RunID:      runID,
		Symbol:     "SPY",
		StrategyID: strategyID,
		StartDate:  start,
		EndDate:    start.AddDate(1, 0, 0),
		Metrics: domain.RiskMetrics{
			CAGR:        cagr,
			MaxDrawdown: dd,
		},
		Flagged: flagged,
	}
}

func TestAggregator_Summarize(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBacktestResultStore()
	agg := NewAggregator(store)

	if err := store.Insert(ctx, storedResult("r1", "BUY_AND_HOLD", 0.10, -0.08, false)); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, storedResult("r2", "BUY_AND_HOLD", 0.20, -0.15, true)); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, storedResult("r3", "REGIME_FILTER", 0.05, -0.02, false)); err != nil {
		t.Fatal(err)
	}

	s, err := agg.Summarize(ctx, "BUY_AND_HOLD")
	if err != nil {
		t.Fatal(err)
	}
	if s.Runs != 2 || s.FlaggedRuns != 1 {
		t.Errorf("runs = %d flagged = %d, want 2/1", s.Runs, s.FlaggedRuns)
	}
	if s.MeanCAGR != 0.15 {
		t.Errorf("mean CAGR = %v, want 0.15", s.MeanCAGR)
	}
	if s.WorstDrawdown != -0.15 {
		t.Errorf("worst drawdown = %v, want -0.15", s.WorstDrawdown)
	}
}

func TestAggregator_SummarizeAllOrdered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewBacktestResultStore()
	agg := NewAggregator(store)

	if err := store.Insert(ctx, storedResult("r1", "ZETA", 0.1, 0, false)); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, storedResult("r2", "ALPHA", 0.1, 0, false)); err != nil {
		t.Fatal(err)
	}

	summaries, err := agg.SummarizeAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 || summaries[0].StrategyID != "ALPHA" || summaries[1].StrategyID != "ZETA" {
		t.Errorf("unexpected order: %+v", summaries)
	}
}

func TestAggregator_NoResults(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregator(memory.NewBacktestResultStore())

	if _, err := agg.Summarize(ctx, "MISSING"); !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
	if _, err := agg.SummarizeAll(ctx); !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}
