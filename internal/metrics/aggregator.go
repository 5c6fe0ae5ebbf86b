package metrics

import (
	"context"
	"errors"
	"sort"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// ErrNoResults is returned when no runs are available for aggregation.
var ErrNoResults = errors.New("no backtest results available for aggregation")

// StrategySummary averages the headline metrics of a strategy across its
// stored backtest runs.
type StrategySummary struct {
	StrategyID string

	Runs        int
	FlaggedRuns int

	MeanTotalReturn float64
	MeanCAGR        float64
	MeanSharpe      float64
	MeanWinRate     float64
	WorstDrawdown   float64 // most negative MaxDrawdown across runs
	MeanPower       float64
}

// Aggregator computes cross-run strategy summaries from stored results.
type Aggregator struct {
	resultStore storage.BacktestResultStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(resultStore storage.BacktestResultStore) *Aggregator {
	return &Aggregator{resultStore: resultStore}
}

// Summarize aggregates all stored runs for one strategy.
// Returns ErrNoResults when the store holds no runs for that strategy.
func (a *Aggregator) Summarize(ctx context.Context, strategyID string) (*StrategySummary, error) {
	results, err := a.resultStore.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.BacktestResult
	for _, r := range results {
		if r.StrategyID == strategyID {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoResults
	}

	return summarize(strategyID, matched), nil
}

// SummarizeAll aggregates every strategy present in the store, ordered by
// strategy ID for deterministic output.
func (a *Aggregator) SummarizeAll(ctx context.Context) ([]*StrategySummary, error) {
	results, err := a.resultStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	byStrategy := make(map[string][]*domain.BacktestResult)
	for _, r := range results {
		byStrategy[r.StrategyID] = append(byStrategy[r.StrategyID], r)
	}

	ids := make([]string, 0, len(byStrategy))
	for id := range byStrategy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]*StrategySummary, len(ids))
	for i, id := range ids {
		summaries[i] = summarize(id, byStrategy[id])
	}
	return summaries, nil
}

// summarize folds one strategy's runs into a summary.
func summarize(strategyID string, runs []*domain.BacktestResult) *StrategySummary {
	s := &StrategySummary{StrategyID: strategyID, Runs: len(runs)}

	for _, r := range runs {
		if r.Flagged {
			s.FlaggedRuns++
		}
		s.MeanTotalReturn += r.Metrics.TotalReturn
		s.MeanCAGR += r.Metrics.CAGR
		s.MeanSharpe += r.Metrics.Sharpe
		s.MeanWinRate += r.Metrics.WinRate
		s.MeanPower += r.Metrics.StatisticalPower
		if r.Metrics.MaxDrawdown < s.WorstDrawdown {
			s.WorstDrawdown = r.Metrics.MaxDrawdown
		}
	}

	n := float64(len(runs))
	s.MeanTotalReturn /= n
	s.MeanCAGR /= n
	s.MeanSharpe /= n
	s.MeanWinRate /= n
	s.MeanPower /= n
	return s
}
