package marketdata

import (
	"context"
	"errors"
	"time"

	"options-strategy-lab/internal/domain"
)

// Provider errors.
var (
	ErrNoData        = errors.New("marketdata: no data for symbol in range")
	ErrUnknownSymbol = errors.New("marketdata: unknown symbol")
)

// BarProvider supplies historical OHLCV bars.
type BarProvider interface {
	// GetBars returns bars for [start, end] inclusive, chronological ASC.
	// Returns ErrNoData when the range holds no bars.
	GetBars(ctx context.Context, symbol string, start, end time.Time) (domain.BarSeries, error)
}

// IVMetricsProvider supplies volatility-surface metrics as of a date.
// Providers without an options feed may return approximated metrics with
// Approx set, letting the feature builder degrade rather than fail.
type IVMetricsProvider interface {
	GetIVMetrics(ctx context.Context, symbol string, asOf time.Time) (domain.IVMetrics, error)
}
