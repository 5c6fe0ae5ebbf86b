package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
// Legs are stored as a JSONB column since leg counts vary by strategy.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	trade_id, symbol, strategy_id, legs,
	entry_date, entry_price, exit_date, exit_price,
	commission, status, pnl, exit_reason
`

const insertTradeQuery = `
	INSERT INTO trades (
		trade_id, symbol, strategy_id, legs,
		entry_date, entry_price, exit_date, exit_price,
		commission, status, pnl, exit_reason
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	args, err := tradeArgs(t)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, insertTradeQuery, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		args, err := tradeArgs(t)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertTradeQuery, args...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetBySymbol retrieves all trades for a symbol, ordered by entry date then trade ID.
func (s *TradeStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE symbol = $1
		ORDER BY entry_date ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get trades by symbol: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// tradeArgs builds the positional insert arguments for a trade.
func tradeArgs(t *domain.Trade) ([]any, error) {
	legs, err := json.Marshal(t.Legs)
	if err != nil {
		return nil, fmt.Errorf("marshal trade legs: %w", err)
	}

	var exitDate *time.Time
	if !t.ExitDate.IsZero() {
		exitDate = &t.ExitDate
	}

	return []any{
		t.TradeID, t.Symbol, t.StrategyID, legs,
		t.EntryDate, t.EntryPrice, exitDate, t.ExitPrice,
		t.Commission, string(t.Status), t.PnL, t.ExitReason,
	}, nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var (
		t        domain.Trade
		legs     []byte
		exitDate *time.Time
		status   string
	)

	err := row.Scan(
		&t.TradeID, &t.Symbol, &t.StrategyID, &legs,
		&t.EntryDate, &t.EntryPrice, &exitDate, &t.ExitPrice,
		&t.Commission, &status, &t.PnL, &t.ExitReason,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(legs, &t.Legs); err != nil {
		return nil, fmt.Errorf("unmarshal trade legs: %w", err)
	}
	if exitDate != nil {
		t.ExitDate = *exitDate
	}
	t.Status = domain.TradeStatus(status)

	return &t, nil
}

// scanTrades scans multiple rows into a slice of Trade.
func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
