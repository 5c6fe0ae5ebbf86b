package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[string]domain.BarSeries // keyed by symbol
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{data: make(map[string]domain.BarSeries)}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds bars for a symbol. Fails the entire batch on any
// duplicate (symbol, date).
func (s *BarStore) InsertBulk(_ context.Context, symbol string, bars domain.BarSeries) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[time.Time]struct{}, len(s.data[symbol]))
	for _, b := range s.data[symbol] {
		existing[b.Date] = struct{}{}
	}
	for _, b := range bars {
		if _, dup := existing[b.Date]; dup {
			return storage.ErrDuplicateKey
		}
		existing[b.Date] = struct{}{}
	}

	merged := append(append(domain.BarSeries{}, s.data[symbol]...), bars...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	s.data[symbol] = merged
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(_ context.Context, symbol string) (domain.BarSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := make(domain.BarSeries, len(s.data[symbol]))
	copy(bars, s.data[symbol])
	return bars, nil
}

// GetByDateRange retrieves bars within [start, end] inclusive.
func (s *BarStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) (domain.BarSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out domain.BarSeries
	for _, b := range s.data[symbol] {
		if !b.Date.Before(start) && !b.Date.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}
