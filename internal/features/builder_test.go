package features

import (
	"errors"
	"math"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
)

func makeBars(closes []float64) domain.BarSeries {
	bars := make(domain.BarSeries, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c * 0.995,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1e6,
		}
	}
	return bars
}

func trendingCloses(n int, drift float64) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + drift
		closes[i] = price
	}
	return closes
}

func TestNewBuilder_InsufficientData(t *testing.T) {
	_, err := NewBuilder(makeBars(trendingCloses(30, 0.001)))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBuild_AllFinite(t *testing.T) {
	b, err := NewBuilder(makeBars(trendingCloses(300, 0.002)))
	if err != nil {
		t.Fatal(err)
	}

	iv := domain.IVMetrics{IVRank: 42, TermSlope: 0.01, Skew: -0.05}
	for i := b.MinIndex(); i < b.Len(); i++ {
		fv, err := b.Build(i, iv)
		if err != nil {
			t.Fatalf("Build(%d): %v", i, err)
		}
		for j, v := range fv {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("index %d feature %s is not finite: %f", i, domain.FeatureNames[j], v)
			}
		}
	}
}

func TestBuild_NonFiniteMappedToZero(t *testing.T) {
	// Zero volume makes the volume ratio division degenerate; the builder
	// must map it to 0 rather than propagate NaN.
	bars := makeBars(trendingCloses(100, 0.001))
	for i := range bars {
		bars[i].Volume = 0
	}
	b, err := NewBuilder(bars)
	if err != nil {
		t.Fatal(err)
	}

	fv, err := b.Build(60, domain.IVMetrics{})
	if err != nil {
		t.Fatal(err)
	}
	if fv[domain.FeatVolumeRatio] != 0 {
		t.Errorf("volume ratio = %f, want 0", fv[domain.FeatVolumeRatio])
	}
}

func TestBuild_TrendDirection(t *testing.T) {
	up, err := NewBuilder(makeBars(trendingCloses(300, 0.003)))
	if err != nil {
		t.Fatal(err)
	}
	down, err := NewBuilder(makeBars(trendingCloses(300, -0.003)))
	if err != nil {
		t.Fatal(err)
	}

	fvUp, _ := up.Build(250, domain.IVMetrics{})
	fvDown, _ := down.Build(250, domain.IVMetrics{})

	if fvUp[domain.FeatPriceVsSMA50] <= 0 {
		t.Errorf("uptrend price_vs_sma50 = %f, want > 0", fvUp[domain.FeatPriceVsSMA50])
	}
	if fvDown[domain.FeatPriceVsSMA50] >= 0 {
		t.Errorf("downtrend price_vs_sma50 = %f, want < 0", fvDown[domain.FeatPriceVsSMA50])
	}
	if fvUp[domain.FeatRSI14] <= fvDown[domain.FeatRSI14] {
		t.Errorf("uptrend RSI (%f) should exceed downtrend RSI (%f)",
			fvUp[domain.FeatRSI14], fvDown[domain.FeatRSI14])
	}
	if fvUp[domain.FeatMomentum10] <= 0 || fvDown[domain.FeatMomentum10] >= 0 {
		t.Errorf("momentum signs wrong: up=%f down=%f",
			fvUp[domain.FeatMomentum10], fvDown[domain.FeatMomentum10])
	}
}

func TestBuildAll_Alignment(t *testing.T) {
	b, err := NewBuilder(makeBars(trendingCloses(120, 0.001)))
	if err != nil {
		t.Fatal(err)
	}

	vectors, err := b.BuildAll(domain.IVMetrics{})
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != b.Len()-b.MinIndex() {
		t.Errorf("got %d vectors, want %d", len(vectors), b.Len()-b.MinIndex())
	}
}

func TestIndicators_KnownValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := SMA(closes, 4, 5); got != 3 {
		t.Errorf("SMA = %f, want 3", got)
	}
	if got := SMA(closes, 9, 5); got != 8 {
		t.Errorf("SMA = %f, want 8", got)
	}
	if !math.IsNaN(SMA(closes, 2, 5)) {
		t.Error("SMA with short history should be NaN")
	}

	// Monotonically rising closes: RSI is 100 (no losses).
	if got := RSI(closes, 9, 5); got != 100 {
		t.Errorf("RSI = %f, want 100", got)
	}
}

func TestRealizedVol_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	if got := RealizedVol(closes, 29, 10); got != 0 {
		t.Errorf("flat series realized vol = %f, want 0", got)
	}
}

func TestTrendStrength_Direction(t *testing.T) {
	trending := makeBars(trendingCloses(120, 0.01))
	strength := TrendStrength(trending, 100, 50)
	if strength < 25 {
		t.Errorf("strong trend ADX = %f, want >= 25", strength)
	}

	flat := makeBars(trendingCloses(120, 0))
	// Constant OHLC bars have zero directional movement.
	flatStrength := TrendStrength(flat, 100, 50)
	if math.IsNaN(flatStrength) || flatStrength > 25 {
		t.Errorf("flat series ADX = %f, want small and finite", flatStrength)
	}
}
