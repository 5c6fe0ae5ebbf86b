package marketdata

import (
	"context"
	"fmt"
	"time"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/lookup"
	"options-strategy-lab/internal/pricing"
)

const (
	ivEstimateLookbackDays  = 20
	ivEstimateAnnualization = 252
)

// StubProvider serves fixed in-memory bars and IV metrics for testing and
// fixture-driven runs. Returns copies to prevent mutation.
// Implements BarProvider and IVMetricsProvider.
type StubProvider struct {
	bars   map[string]domain.BarSeries
	iv     map[string]domain.IVMetrics
	engine *pricing.Engine
}

// NewStubProvider creates a stub provider over the given per-symbol data.
func NewStubProvider(bars map[string]domain.BarSeries, iv map[string]domain.IVMetrics) *StubProvider {
	return &StubProvider{bars: bars, iv: iv, engine: pricing.NewEngine()}
}

// GetBars returns bars within [start, end] inclusive.
func (p *StubProvider) GetBars(_ context.Context, symbol string, start, end time.Time) (domain.BarSeries, error) {
	series, ok := p.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	var result domain.BarSeries
	for _, b := range series {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		result = append(result, b)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s [%s, %s]", ErrNoData, symbol,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return result, nil
}

// GetIVMetrics returns the configured metrics for the symbol. Without a
// configured surface it approximates one from the bar history at or
// before asOf, and falls back to a neutral rank with zero confidence
// when there is no history either.
func (p *StubProvider) GetIVMetrics(_ context.Context, symbol string, asOf time.Time) (domain.IVMetrics, error) {
	if m, ok := p.iv[symbol]; ok {
		return m, nil
	}

	series := p.bars[symbol]
	idx, err := lookup.IndexAtOrBefore(asOf, series)
	if err != nil || idx < 0 {
		return domain.IVMetrics{IVRank: 50, Approx: true, Confidence: 0}, nil
	}

	iv := p.engine.EstimateIVFromHistory(series[:idx+1], ivEstimateLookbackDays, ivEstimateAnnualization)
	return domain.IVMetrics{
		IVRank:     ivRankFromEstimate(iv),
		Approx:     true,
		Confidence: 0.3,
	}, nil
}

// ivRankFromEstimate maps an annualized vol estimate to a coarse rank
// bucket. A ~20% vol sits mid-range.
func ivRankFromEstimate(iv float64) float64 {
	switch {
	case iv <= 0.10:
		return 20
	case iv <= 0.20:
		return 45
	case iv <= 0.35:
		return 65
	case iv <= 0.50:
		return 80
	default:
		return 90
	}
}

var (
	_ BarProvider       = (*StubProvider)(nil)
	_ IVMetricsProvider = (*StubProvider)(nil)
)
