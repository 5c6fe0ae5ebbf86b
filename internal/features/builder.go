// Package features converts price-bar series and volatility metrics into
// the fixed-length numeric feature vectors consumed by the regime
// classifier and the signal model.
package features

import (
	"errors"
	"fmt"
	"math"

	"options-strategy-lab/internal/domain"
)

// Lookback requirements.
const (
	// DefaultLookback is the minimum history the builder itself needs.
	DefaultLookback = 50

	// ModelLookback is the minimum history the regime and ML paths need.
	ModelLookback = 200
)

// ErrInsufficientData is returned when a series is shorter than the
// required lookback.
var ErrInsufficientData = errors.New("insufficient price history")

// Builder computes feature vectors over one bar series.
type Builder struct {
	bars     domain.BarSeries
	closes   []float64
	volumes  []float64
	lookback int
}

// NewBuilder creates a feature builder over bars.
// Returns ErrInsufficientData when fewer than DefaultLookback bars are given.
func NewBuilder(bars domain.BarSeries) (*Builder, error) {
	return NewBuilderWithLookback(bars, DefaultLookback)
}

// NewBuilderWithLookback creates a builder with a custom minimum lookback.
func NewBuilderWithLookback(bars domain.BarSeries, lookback int) (*Builder, error) {
	if len(bars) < lookback {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, len(bars), lookback)
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	return &Builder{
		bars:     bars,
		closes:   closes,
		volumes:  volumes,
		lookback: lookback,
	}, nil
}

// Len returns the number of bars the builder covers.
func (b *Builder) Len() int {
	return len(b.bars)
}

// MinIndex returns the first bar index a vector can be built for.
func (b *Builder) MinIndex() int {
	return b.lookback
}

// Build computes the feature vector at bar index i. Non-finite values are
// mapped to 0 and never propagated.
func (b *Builder) Build(i int, iv domain.IVMetrics) (domain.FeatureVector, error) {
	var fv domain.FeatureVector
	if i < b.lookback || i >= len(b.bars) {
		return fv, fmt.Errorf("%w: index %d outside [%d, %d)", ErrInsufficientData, i, b.lookback, len(b.bars))
	}

	close := b.closes[i]

	// Trend ratios: price relative to moving averages.
	fv[domain.FeatPriceVsSMA20] = ratio(close, SMA(b.closes, i, 20))
	fv[domain.FeatPriceVsSMA50] = ratio(close, SMA(b.closes, i, 50))
	fv[domain.FeatPriceVsSMA200] = ratio(close, SMA(b.closes, i, 200))
	fv[domain.FeatEMA12Delta] = ratio(close, EMA(b.closes, i, 12))
	fv[domain.FeatEMA26Delta] = ratio(close, EMA(b.closes, i, 26))

	// Momentum.
	fv[domain.FeatRSI14] = RSI(b.closes, i, 14) / 100
	line, signal, hist := MACD(b.closes, i)
	fv[domain.FeatMACDLine] = safeDiv(line, close)
	fv[domain.FeatMACDSignal] = safeDiv(signal, close)
	fv[domain.FeatMACDHistogram] = safeDiv(hist, close)

	// Volatility.
	fv[domain.FeatATRNormalized] = safeDiv(ATR(b.bars, i, 14), close)
	pos, width := Bollinger(b.closes, i)
	fv[domain.FeatBollingerPos] = pos
	fv[domain.FeatBollingerWidth] = width
	fv[domain.FeatRealizedVol5] = RealizedVol(b.closes, i, 5)
	fv[domain.FeatRealizedVol10] = RealizedVol(b.closes, i, 10)
	fv[domain.FeatRealizedVol20] = RealizedVol(b.closes, i, 20)

	// Volume.
	fv[domain.FeatVolumeRatio] = safeDiv(b.volumes[i], SMA(b.volumes, i, 20))

	// Price momentum at fixed offsets.
	fv[domain.FeatMomentum5] = ratio(close, b.closes[i-5])
	fv[domain.FeatMomentum10] = ratio(close, b.closes[i-10])

	// External volatility surface metrics.
	fv[domain.FeatIVRank] = iv.IVRank / 100
	fv[domain.FeatIVTermSlope] = iv.TermSlope
	fv[domain.FeatIVSkew] = iv.Skew

	// Non-finite policy: every element must be finite.
	for j := range fv {
		if math.IsNaN(fv[j]) || math.IsInf(fv[j], 0) {
			fv[j] = 0
		}
	}

	return fv, nil
}

// BuildAll computes vectors for every index from MinIndex to the last bar.
// Returned slices are aligned: vectors[k] corresponds to bar index
// MinIndex()+k.
func (b *Builder) BuildAll(iv domain.IVMetrics) ([]domain.FeatureVector, error) {
	out := make([]domain.FeatureVector, 0, len(b.bars)-b.lookback)
	for i := b.lookback; i < len(b.bars); i++ {
		fv, err := b.Build(i, iv)
		if err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, nil
}

// ratio returns value/base - 1, or NaN when base is unusable.
func ratio(value, base float64) float64 {
	if base == 0 || math.IsNaN(base) {
		return math.NaN()
	}
	return value/base - 1
}

// safeDiv returns a/b, or NaN when b is zero.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}
