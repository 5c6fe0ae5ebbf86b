package memory

import (
	"context"
	"sort"
	"sync"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// BacktestResultStore is an in-memory implementation of
// storage.BacktestResultStore.
type BacktestResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BacktestResult // keyed by run_id
}

// NewBacktestResultStore creates a new in-memory result store.
func NewBacktestResultStore() *BacktestResultStore {
	return &BacktestResultStore{data: make(map[string]*domain.BacktestResult)}
}

// Compile-time interface check.
var _ storage.BacktestResultStore = (*BacktestResultStore)(nil)

// Insert adds a new result. Returns ErrDuplicateKey if run_id exists.
func (s *BacktestResultStore) Insert(_ context.Context, r *domain.BacktestResult) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.RunID] = cloneResult(r)
	return nil
}

// GetByID retrieves a result by run ID. Returns ErrNotFound if not exists.
func (s *BacktestResultStore) GetByID(_ context.Context, runID string) (*domain.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneResult(r), nil
}

// List retrieves all stored results, ordered by run ID ASC.
func (s *BacktestResultStore) List(_ context.Context) ([]*domain.BacktestResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.BacktestResult, 0, len(s.data))
	for _, r := range s.data {
		out = append(out, cloneResult(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}

// cloneResult deep-copies a result so callers cannot mutate stored state.
func cloneResult(r *domain.BacktestResult) *domain.BacktestResult {
	clone := *r
	clone.EquityCurve = append([]domain.EquityPoint{}, r.EquityCurve...)
	clone.Warnings = append([]string{}, r.Warnings...)
	clone.Trades = make([]*domain.Trade, len(r.Trades))
	for i, t := range r.Trades {
		tc := *t
		tc.Legs = append([]domain.TradeLeg{}, t.Legs...)
		clone.Trades[i] = &tc
	}
	return &clone
}
