package postgres

import (
	"context"
	"fmt"
	"time"

	"options-strategy-lab/internal/storage"
)

// ModelWeightStore implements storage.ModelWeightStore using PostgreSQL.
// A single-row table holds the current weights payload; Save replaces it.
type ModelWeightStore struct {
	pool *Pool
}

// NewModelWeightStore creates a new ModelWeightStore.
func NewModelWeightStore(pool *Pool) *ModelWeightStore {
	return &ModelWeightStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelWeightStore = (*ModelWeightStore)(nil)

// Load returns the stored payload. Returns ErrNotFound when nothing has
// been saved.
func (s *ModelWeightStore) Load(ctx context.Context) ([]byte, error) {
	query := `SELECT payload FROM model_weights WHERE id = 1`

	var payload []byte
	err := s.pool.QueryRow(ctx, query).Scan(&payload)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load model weights: %w", err)
	}
	return payload, nil
}

// Save stores the payload, replacing any previous one.
func (s *ModelWeightStore) Save(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO model_weights (id, payload, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("save model weights: %w", err)
	}
	return nil
}
