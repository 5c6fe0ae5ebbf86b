package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/storage"
)

// BacktestResultStore implements storage.BacktestResultStore using PostgreSQL.
// The headline metrics live in dedicated columns so they can be queried and
// compared across runs; the equity curve and trade list are JSONB documents.
type BacktestResultStore struct {
	pool *Pool
}

// NewBacktestResultStore creates a new BacktestResultStore.
func NewBacktestResultStore(pool *Pool) *BacktestResultStore {
	return &BacktestResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BacktestResultStore = (*BacktestResultStore)(nil)

const resultColumns = `
	run_id, symbol, strategy_id, start_date, end_date,
	total_return, cagr, annualized_vol, sharpe, sortino,
	profit_factor, win_rate, avg_win, avg_loss,
	var_95, expected_shortfall, max_drawdown, calmar, statistical_power,
	equity_curve, trades, warnings, flagged
`

// Insert adds a new result. Returns ErrDuplicateKey if run_id exists.
func (s *BacktestResultStore) Insert(ctx context.Context, r *domain.BacktestResult) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	equity, err := json.Marshal(r.EquityCurve)
	if err != nil {
		return fmt.Errorf("marshal equity curve: %w", err)
	}
	trades, err := json.Marshal(r.Trades)
	if err != nil {
		return fmt.Errorf("marshal trades: %w", err)
	}
	warnings, err := json.Marshal(r.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	query := `
		INSERT INTO backtest_results (
			run_id, symbol, strategy_id, start_date, end_date,
			total_return, cagr, annualized_vol, sharpe, sortino,
			profit_factor, win_rate, avg_win, avg_loss,
			var_95, expected_shortfall, max_drawdown, calmar, statistical_power,
			equity_curve, trades, warnings, flagged
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21, $22, $23
		)
	`

	m := r.Metrics
	_, err = s.pool.Exec(ctx, query,
		r.RunID, r.Symbol, r.StrategyID, r.StartDate, r.EndDate,
		m.TotalReturn, m.CAGR, m.AnnualizedVol, m.Sharpe, m.Sortino,
		m.ProfitFactor, m.WinRate, m.AvgWin, m.AvgLoss,
		m.VaR95, m.ExpectedShortfall, m.MaxDrawdown, m.Calmar, m.StatisticalPower,
		equity, trades, warnings, r.Flagged,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves a result by run ID. Returns ErrNotFound if not exists.
func (s *BacktestResultStore) GetByID(ctx context.Context, runID string) (*domain.BacktestResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM backtest_results
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest result by id: %w", err)
	}
	return r, nil
}

// List retrieves all stored results, ordered by run ID ASC.
func (s *BacktestResultStore) List(ctx context.Context) ([]*domain.BacktestResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM backtest_results
		ORDER BY run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list backtest results: %w", err)
	}
	defer rows.Close()

	var results []*domain.BacktestResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backtest result row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest result rows: %w", err)
	}

	return results, nil
}

// scanResult scans a single row into a BacktestResult.
func scanResult(row pgx.Row) (*domain.BacktestResult, error) {
	var (
		r        domain.BacktestResult
		equity   []byte
		trades   []byte
		warnings []byte
	)

	m := &r.Metrics
	err := row.Scan(
		&r.RunID, &r.Symbol, &r.StrategyID, &r.StartDate, &r.EndDate,
		&m.TotalReturn, &m.CAGR, &m.AnnualizedVol, &m.Sharpe, &m.Sortino,
		&m.ProfitFactor, &m.WinRate, &m.AvgWin, &m.AvgLoss,
		&m.VaR95, &m.ExpectedShortfall, &m.MaxDrawdown, &m.Calmar, &m.StatisticalPower,
		&equity, &trades, &warnings, &r.Flagged,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(equity, &r.EquityCurve); err != nil {
		return nil, fmt.Errorf("unmarshal equity curve: %w", err)
	}
	if err := json.Unmarshal(trades, &r.Trades); err != nil {
		return nil, fmt.Errorf("unmarshal trades: %w", err)
	}
	if err := json.Unmarshal(warnings, &r.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}

	return &r, nil
}
