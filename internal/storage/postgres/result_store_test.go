package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

func createTestResult(runID string) *domain.BacktestResult {
	start := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	return &domain.BacktestResult{
		RunID:      runID,
		Symbol:     "SPY",
		StrategyID: "SIGNAL_THRESHOLD_p60",
		StartDate:  start,
		EndDate:    end,
		EquityCurve: []domain.EquityPoint{
			{Date: start, Equity: 100000, Drawdown: 0, TradeCount: 0},
			{Date: end, Equity: 112000, Drawdown: 0, TradeCount: 8},
		},
		Trades: []*domain.Trade{
			createTestTrade("result-trade-1", start),
		},
		Metrics: domain.RiskMetrics{
			TotalReturn:       0.12,
			CAGR:              0.12,
			AnnualizedVol:     0.14,
			Sharpe:            0.85,
			Sortino:           1.10,
			ProfitFactor:      1.9,
			WinRate:           0.625,
			AvgWin:            450.0,
			AvgLoss:           -210.0,
			VaR95:             -0.018,
			ExpectedShortfall: -0.025,
			MaxDrawdown:       -0.07,
			Calmar:            1.71,
			StatisticalPower:  0.4,
		},
		Warnings: []string{"fewer than 30 closed trades"},
		Flagged:  false,
	}
}

func TestBacktestResultStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBacktestResultStore(pool)

	result := createTestResult("run-001")
	require.NoError(t, store.Insert(ctx, result))

	retrieved, err := store.GetByID(ctx, "run-001")
	require.NoError(t, err)

	assert.Equal(t, result.RunID, retrieved.RunID)
	assert.Equal(t, result.Symbol, retrieved.Symbol)
	assert.Equal(t, result.StrategyID, retrieved.StrategyID)
	assert.True(t, result.StartDate.Equal(retrieved.StartDate))
	assert.True(t, result.EndDate.Equal(retrieved.EndDate))

	assert.InDelta(t, result.Metrics.TotalReturn, retrieved.Metrics.TotalReturn, 1e-9)
	assert.InDelta(t, result.Metrics.Sharpe, retrieved.Metrics.Sharpe, 1e-9)
	assert.InDelta(t, result.Metrics.MaxDrawdown, retrieved.Metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, result.Metrics.StatisticalPower, retrieved.Metrics.StatisticalPower, 1e-9)

	require.Len(t, retrieved.EquityCurve, 2)
	assert.InDelta(t, 112000.0, retrieved.EquityCurve[1].Equity, 1e-9)
	assert.Equal(t, 8, retrieved.EquityCurve[1].TradeCount)

	require.Len(t, retrieved.Trades, 1)
	assert.Equal(t, "result-trade-1", retrieved.Trades[0].TradeID)

	require.Len(t, retrieved.Warnings, 1)
	assert.False(t, retrieved.Flagged)
}

func TestBacktestResultStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBacktestResultStore(pool)

	require.NoError(t, store.Insert(ctx, createTestResult("run-dup")))
	err := store.Insert(ctx, createTestResult("run-dup"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBacktestResultStore_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBacktestResultStore(pool)

	require.NoError(t, store.Insert(ctx, createTestResult("run-b")))
	require.NoError(t, store.Insert(ctx, createTestResult("run-a")))

	results, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "run-a", results[0].RunID)
	assert.Equal(t, "run-b", results[1].RunID)
}

func TestBacktestResultStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBacktestResultStore(pool)

	_, err := store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
