package memory

import (
	"context"
	"sync"

	"options-strategy-lab/internal/storage"
)

// ModelWeightStore is an in-memory implementation of storage.ModelWeightStore.
type ModelWeightStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewModelWeightStore creates a new in-memory weight store.
func NewModelWeightStore() *ModelWeightStore {
	return &ModelWeightStore{}
}

// Compile-time interface check.
var _ storage.ModelWeightStore = (*ModelWeightStore)(nil)

// Load returns the stored payload. Returns ErrNotFound when nothing has
// been saved.
func (s *ModelWeightStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Save stores the payload, replacing any previous one.
func (s *ModelWeightStore) Save(_ context.Context, data []byte) error {
	if len(data) == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
