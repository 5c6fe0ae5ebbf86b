package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

type featureRow struct {
	date   time.Time
	vector domain.FeatureVector
}

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string][]featureRow // keyed by symbol, sorted by date
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{data: make(map[string][]featureRow)}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds feature vectors keyed by bar date. Fails the entire
// batch on any duplicate (symbol, date).
func (s *FeatureStore) InsertBulk(_ context.Context, symbol string, dates []time.Time, vectors []domain.FeatureVector) error {
	if symbol == "" || len(dates) != len(vectors) {
		return storage.ErrInvalidInput
	}
	if len(dates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[time.Time]struct{}, len(s.data[symbol]))
	for _, row := range s.data[symbol] {
		existing[row.date] = struct{}{}
	}
	for _, d := range dates {
		if _, dup := existing[d]; dup {
			return storage.ErrDuplicateKey
		}
		existing[d] = struct{}{}
	}

	rows := s.data[symbol]
	for i, d := range dates {
		rows = append(rows, featureRow{date: d, vector: vectors[i]})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	s.data[symbol] = rows
	return nil
}

// GetBySymbol retrieves all vectors for a symbol, ordered by date ASC.
func (s *FeatureStore) GetBySymbol(_ context.Context, symbol string) ([]time.Time, []domain.FeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[symbol]
	dates := make([]time.Time, len(rows))
	vectors := make([]domain.FeatureVector, len(rows))
	for i, row := range rows {
		dates[i] = row.date
		vectors[i] = row.vector
	}
	return dates, vectors, nil
}
