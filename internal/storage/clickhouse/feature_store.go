package clickhouse

import (
	"context"
	"fmt"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
// Vectors are stored as Array(Float64) in fixed feature order.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds feature vectors keyed by bar date. Fails the entire
// batch on any duplicate (symbol, date).
func (s *FeatureStore) InsertBulk(ctx context.Context, symbol string, dates []time.Time, vectors []domain.FeatureVector) error {
	if symbol == "" || len(dates) != len(vectors) {
		return storage.ErrInvalidInput
	}
	if len(dates) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		if _, exists := seen[d]; exists {
			return storage.ErrDuplicateKey
		}
		seen[d] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, d := range dates {
		exists, err := s.exists(ctx, symbol, d)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_vectors (
			symbol, date, features
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, d := range dates {
		values := make([]float64, domain.FeatureCount)
		copy(values, vectors[i][:])
		if err := batch.Append(symbol, d, values); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all vectors for a symbol, ordered by date ASC.
func (s *FeatureStore) GetBySymbol(ctx context.Context, symbol string) ([]time.Time, []domain.FeatureVector, error) {
	query := `
		SELECT date, features
		FROM feature_vectors
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("query features by symbol: %w", err)
	}
	defer rows.Close()

	var (
		dates   []time.Time
		vectors []domain.FeatureVector
	)
	for rows.Next() {
		var (
			date   time.Time
			values []float64
		)
		if err := rows.Scan(&date, &values); err != nil {
			return nil, nil, fmt.Errorf("scan feature row: %w", err)
		}
		if len(values) != domain.FeatureCount {
			return nil, nil, fmt.Errorf("feature row has %d values, want %d", len(values), domain.FeatureCount)
		}

		var v domain.FeatureVector
		copy(v[:], values)
		dates = append(dates, date.UTC())
		vectors = append(vectors, v)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return dates, vectors, nil
}

// exists checks if a vector with the given key exists.
func (s *FeatureStore) exists(ctx context.Context, symbol string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM feature_vectors
		WHERE symbol = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, symbol, date).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}
