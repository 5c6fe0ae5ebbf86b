package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

func testBars(start time.Time, n int) domain.BarSeries {
	bars := make(domain.BarSeries, n)
	for i := range bars {
		price := 100.0 + float64(i)
		bars[i] = domain.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: 1_000_000,
		}
	}
	return bars
}

func TestBarStore_InsertBulkAndGetBySymbol(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBarStore(conn)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, "SPY", testBars(start, 5)))

	bars, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	require.Len(t, bars, 5)

	assert.True(t, bars.IsChronological())
	assert.True(t, bars[0].Date.Equal(start))
	assert.InDelta(t, 100.5, bars[0].Close, 1e-9)
	assert.InDelta(t, 104.5, bars[4].Close, 1e-9)
}

func TestBarStore_DuplicateDateRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBarStore(conn)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, "SPY", testBars(start, 3)))

	err := store.InsertBulk(ctx, "SPY", testBars(start.AddDate(0, 0, 2), 3))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBarStore(conn)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := testBars(start, 2)
	bars[1].Date = bars[0].Date

	err := store.InsertBulk(ctx, "SPY", bars)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBarStore(conn)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, "SPY", testBars(start, 10)))

	// Inclusive on both ends.
	from := start.AddDate(0, 0, 2)
	to := start.AddDate(0, 0, 5)
	bars, err := store.GetByDateRange(ctx, "SPY", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.True(t, bars[0].Date.Equal(from))
	assert.True(t, bars[3].Date.Equal(to))
}

func TestBarStore_SymbolIsolation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewBarStore(conn)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, "SPY", testBars(start, 3)))
	require.NoError(t, store.InsertBulk(ctx, "QQQ", testBars(start, 2)))

	bars, err := store.GetBySymbol(ctx, "QQQ")
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}
