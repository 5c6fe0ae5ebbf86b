package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
)

func stubBars(n int) domain.BarSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(domain.BarSeries, n)
	for i := range bars {
		bars[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	return bars
}

func TestStubProvider_GetBars(t *testing.T) {
	p := NewStubProvider(map[string]domain.BarSeries{"SPY": stubBars(10)}, nil)

	start := time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC)

	bars, err := p.GetBars(context.Background(), "SPY", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 5 {
		t.Errorf("bars = %d, want 5 (inclusive range)", len(bars))
	}
	if !bars[0].Date.Equal(start) || !bars[len(bars)-1].Date.Equal(end) {
		t.Errorf("range [%s, %s] not honored", bars[0].Date, bars[len(bars)-1].Date)
	}
}

func TestStubProvider_Errors(t *testing.T) {
	p := NewStubProvider(map[string]domain.BarSeries{"SPY": stubBars(5)}, nil)

	if _, err := p.GetBars(context.Background(), "QQQ", time.Time{}, time.Now()); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}

	far := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := p.GetBars(context.Background(), "SPY", far, far.AddDate(0, 1, 0)); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestStubProvider_IVMetrics(t *testing.T) {
	p := NewStubProvider(nil, map[string]domain.IVMetrics{
		"SPY": {IVRank: 72, TermSlope: -0.02, Skew: 0.05, Confidence: 0.9},
	})

	m, err := p.GetIVMetrics(context.Background(), "SPY", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if m.IVRank != 72 || m.Approx {
		t.Errorf("metrics = %+v, want configured exact surface", m)
	}

	m, err = p.GetIVMetrics(context.Background(), "QQQ", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !m.Approx {
		t.Error("unconfigured symbol should return approximated metrics")
	}
	if m.Confidence != 0 {
		t.Errorf("no history means zero confidence, got %v", m.Confidence)
	}
}

func TestStubProvider_IVMetricsFromHistory(t *testing.T) {
	bars := stubBars(60)
	p := NewStubProvider(map[string]domain.BarSeries{"SPY": bars}, nil)

	asOf := bars[len(bars)-1].Date
	m, err := p.GetIVMetrics(context.Background(), "SPY", asOf)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Approx {
		t.Error("history-derived metrics must be marked approximate")
	}
	if m.Confidence <= 0 {
		t.Error("history-derived metrics should carry some confidence")
	}
	// Flat closes estimate at the volatility floor, which maps to the
	// lowest rank bucket.
	if m.IVRank != 20 {
		t.Errorf("flat series rank = %v, want 20", m.IVRank)
	}
}
