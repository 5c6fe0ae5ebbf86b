package storage

import (
	"context"
	"time"

	"options-strategy-lab/internal/domain"
)

// BarStore provides access to historical price bar storage.
type BarStore interface {
	// InsertBulk adds bars for a symbol. Fails the entire batch on any
	// duplicate (symbol, date).
	InsertBulk(ctx context.Context, symbol string, bars domain.BarSeries) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) (domain.BarSeries, error)

	// GetByDateRange retrieves bars for a symbol within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) (domain.BarSeries, error)
}

// TradeStore provides access to simulated trade storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails the entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetBySymbol retrieves all trades for a symbol, ordered by entry date
	// ASC then trade ID ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error)
}

// BacktestResultStore provides access to completed backtest runs.
type BacktestResultStore interface {
	// Insert adds a new result. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.BacktestResult) error

	// GetByID retrieves a result by run ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.BacktestResult, error)

	// List retrieves all stored results, ordered by run ID ASC.
	List(ctx context.Context) ([]*domain.BacktestResult, error)
}

// FeatureStore provides access to computed feature vector storage.
type FeatureStore interface {
	// InsertBulk adds feature vectors for a symbol keyed by bar date.
	// Fails the entire batch on any duplicate (symbol, date).
	InsertBulk(ctx context.Context, symbol string, dates []time.Time, vectors []domain.FeatureVector) error

	// GetBySymbol retrieves all vectors for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]time.Time, []domain.FeatureVector, error)
}

// ModelWeightStore provides access to serialized model weights.
type ModelWeightStore interface {
	// Load returns the stored weights payload. Returns ErrNotFound when
	// no weights have been saved.
	Load(ctx context.Context) ([]byte, error)

	// Save stores the weights payload, replacing any previous one.
	Save(ctx context.Context, data []byte) error
}
