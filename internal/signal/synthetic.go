package signal

import (
	"math/rand"

	"options-strategy-lab/internal/domain"
)

// Synthetic dataset size for fallback self-training.
const syntheticSamples = 600

// SyntheticDataset generates a deterministic labeled dataset with feature
// distributions wired to plausible financial semantics: upward labels are
// made more likely by positive momentum, trend alignment, bullish RSI, and
// MACD histogram, and less likely by elevated volatility. Used only for
// fallback self-training when no stored weights are available.
func SyntheticDataset(rng *rand.Rand) ([][]float64, []float64) {
	samples := make([][]float64, syntheticSamples)
	targets := make([]float64, syntheticSamples)

	for i := 0; i < syntheticSamples; i++ {
		fv := make([]float64, domain.FeatureCount)

		trend := rng.NormFloat64() * 0.04
		fv[domain.FeatPriceVsSMA20] = trend + rng.NormFloat64()*0.01
		fv[domain.FeatPriceVsSMA50] = trend*1.5 + rng.NormFloat64()*0.015
		fv[domain.FeatPriceVsSMA200] = trend*2.5 + rng.NormFloat64()*0.03
		fv[domain.FeatEMA12Delta] = trend*0.6 + rng.NormFloat64()*0.008
		fv[domain.FeatEMA26Delta] = trend*0.8 + rng.NormFloat64()*0.01

		rsi := 0.5 + trend*4 + rng.NormFloat64()*0.12
		fv[domain.FeatRSI14] = clampUnit(rsi)

		macd := trend * 0.3
		fv[domain.FeatMACDLine] = macd + rng.NormFloat64()*0.004
		fv[domain.FeatMACDSignal] = macd*0.8 + rng.NormFloat64()*0.004
		fv[domain.FeatMACDHistogram] = fv[domain.FeatMACDLine] - fv[domain.FeatMACDSignal]

		vol := 0.15 + absDraw(rng)*0.2
		fv[domain.FeatATRNormalized] = vol * 0.1
		fv[domain.FeatBollingerPos] = clampUnit(0.5 + trend*5 + rng.NormFloat64()*0.2)
		fv[domain.FeatBollingerWidth] = vol * 0.3
		fv[domain.FeatRealizedVol5] = vol * (1 + rng.NormFloat64()*0.15)
		fv[domain.FeatRealizedVol10] = vol * (1 + rng.NormFloat64()*0.1)
		fv[domain.FeatRealizedVol20] = vol

		fv[domain.FeatVolumeRatio] = 1 + rng.NormFloat64()*0.3
		fv[domain.FeatMomentum5] = trend*0.5 + rng.NormFloat64()*0.01
		fv[domain.FeatMomentum10] = trend + rng.NormFloat64()*0.015

		fv[domain.FeatIVRank] = clampUnit(0.5 + rng.NormFloat64()*0.25)
		fv[domain.FeatIVTermSlope] = rng.NormFloat64() * 0.02
		fv[domain.FeatIVSkew] = -0.03 + rng.NormFloat64()*0.02

		// Label: direction follows trend and momentum, dampened by vol.
		signalStrength := trend*8 + fv[domain.FeatMACDHistogram]*20 +
			(fv[domain.FeatRSI14]-0.5)*1.5 - (vol-0.25)*0.8
		prob := sigmoid(signalStrength * 3)

		samples[i] = fv
		if rng.Float64() < prob {
			targets[i] = 1
		}
	}

	return samples, targets
}

// TrainFallback self-trains a model on the synthetic dataset. The result
// is flagged FallbackTrained so callers can treat it with lower trust than
// a production-trained model.
func TrainFallback(seed int64) (*Model, error) {
	rng := rand.New(rand.NewSource(seed))
	samples, targets := SyntheticDataset(rng)

	model, err := Train(samples, targets, DefaultTrainConfig(), rng)
	if err != nil {
		return nil, err
	}
	model.FallbackTrained = true
	return model, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absDraw(rng *rand.Rand) float64 {
	v := rng.NormFloat64()
	if v < 0 {
		return -v
	}
	return v
}
