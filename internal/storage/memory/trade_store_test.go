package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

func sampleTrade(id string, entry time.Time) *domain.Trade {
	return &domain.Trade{
		TradeID:    id,
		Symbol:     "SPY",
		StrategyID: "SIGNAL_THRESHOLD_p60",
		Legs: []domain.TradeLeg{
			{Type: domain.LegTypeCall, Side: domain.SideLong, Quantity: 1, Strike: 450},
		},
		EntryDate:  entry,
		EntryPrice: 5.20,
		Status:     domain.TradeStatusOpen,
	}
}

func TestTradeStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	trade := sampleTrade("t1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := s.Insert(ctx, trade); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Symbol != "SPY" || got.EntryPrice != 5.20 {
		t.Errorf("got %+v", got)
	}

	// Stored copy must be isolated from caller mutation.
	trade.EntryPrice = 999
	trade.Legs[0].Strike = 0
	got2, _ := s.GetByID(ctx, "t1")
	if got2.EntryPrice != 5.20 || got2.Legs[0].Strike != 450 {
		t.Error("store leaked a reference to caller-owned data")
	}
}

func TestTradeStore_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	entry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if err := s.Insert(ctx, sampleTrade("t1", entry)); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, sampleTrade("t1", entry)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_InsertBulkAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	entry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Intra-batch duplicate fails the whole batch.
	err := s.InsertBulk(ctx, []*domain.Trade{
		sampleTrade("a", entry),
		sampleTrade("a", entry),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := s.GetByID(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("failed batch must not insert anything")
	}
}

func TestTradeStore_GetBySymbolOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()

	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := s.InsertBulk(ctx, []*domain.Trade{
		sampleTrade("later", d1),
		sampleTrade("earlier", d2),
	}); err != nil {
		t.Fatal(err)
	}

	trades, err := s.GetBySymbol(ctx, "SPY")
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 2 || trades[0].TradeID != "earlier" || trades[1].TradeID != "later" {
		t.Errorf("wrong order: %v, %v", trades[0].TradeID, trades[1].TradeID)
	}
}

func TestTradeStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	if err := s.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := s.Insert(ctx, &domain.Trade{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
