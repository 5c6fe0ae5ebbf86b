package pipeline

import (
	"math"
	"math/rand"
	"time"

	"options-strategy-lab/internal/domain"
)

// FixtureBars generates a deterministic synthetic daily bar series for
// demonstration runs and tests: a seeded geometric random walk with a
// mild drift. The same seed always yields the same series.
func FixtureBars(symbol string, n int, seed int64) domain.BarSeries {
	rng := rand.New(rand.NewSource(seed + int64(hashSymbol(symbol))))

	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	price := 100.0
	const (
		dailyDrift = 0.0002
		dailyVol   = 0.012
	)

	bars := make(domain.BarSeries, n)
	for i := range bars {
		ret := dailyDrift + dailyVol*rng.NormFloat64()
		open := price
		price = price * math.Exp(ret)

		high := math.Max(open, price) * (1 + 0.003*rng.Float64())
		low := math.Min(open, price) * (1 - 0.003*rng.Float64())

		bars[i] = domain.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1_000_000 + float64(rng.Intn(9_000_000)),
		}
	}
	return bars
}

// FixtureIVMetrics returns a plausible fixed volatility surface for
// fixture runs.
func FixtureIVMetrics() domain.IVMetrics {
	return domain.IVMetrics{
		IVRank:     45,
		TermSlope:  -0.01,
		Skew:       0.04,
		Approx:     true,
		Confidence: 0.5,
	}
}

func hashSymbol(symbol string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(symbol); i++ {
		h ^= uint32(symbol[i])
		h *= 16777619
	}
	return h
}
