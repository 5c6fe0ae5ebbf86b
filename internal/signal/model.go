package signal

import (
	"math/rand"
	"sort"

	"options-strategy-lab/internal/domain"
)

// Held-out fraction used for calibration fitting.
const calibrationSplit = 0.25

// Model wraps a trained ensemble with its probability calibration.
// It owns the ensemble exclusively and is read-only after training.
type Model struct {
	Ensemble        *Ensemble
	Calibration     Calibration
	FallbackTrained bool // true when self-trained on synthetic data
}

// Train fits an ensemble on a training split and calibrates on the
// held-out remainder. Targets must be binary (0/1 direction labels).
func Train(samples [][]float64, targets []float64, cfg TrainConfig, rng *rand.Rand) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(samples) != len(targets) {
		return nil, ErrLengthMismatch
	}

	// Shuffle then split so the held-out set is not a time-contiguous tail.
	order := rng.Perm(len(samples))
	holdout := int(float64(len(samples)) * calibrationSplit)
	if holdout < 1 {
		holdout = 1
	}

	trainSamples := make([][]float64, 0, len(samples)-holdout)
	trainTargets := make([]float64, 0, len(samples)-holdout)
	valSamples := make([][]float64, 0, holdout)
	valTargets := make([]float64, 0, holdout)
	for i, j := range order {
		if i < holdout {
			valSamples = append(valSamples, samples[j])
			valTargets = append(valTargets, targets[j])
		} else {
			trainSamples = append(trainSamples, samples[j])
			trainTargets = append(trainTargets, targets[j])
		}
	}

	ensemble, err := TrainEnsemble(trainSamples, trainTargets, cfg, rng)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(valSamples))
	for i, s := range valSamples {
		var fv domain.FeatureVector
		copy(fv[:], s)
		score, err := ensemble.Predict(fv)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}

	return &Model{
		Ensemble:    ensemble,
		Calibration: FitCalibration(scores, valTargets),
	}, nil
}

// Predict returns the calibrated directional prediction for one feature
// vector: probability in [0.01, 0.99], confidence 2|p-0.5|, and the top
// features by decision-path importance.
func (m *Model) Predict(fv domain.FeatureVector) (domain.MLPrediction, error) {
	score, err := m.Ensemble.Predict(fv)
	if err != nil {
		return domain.MLPrediction{}, err
	}

	p := m.Calibration.Apply(score)

	return domain.MLPrediction{
		Probability:     p,
		Confidence:      2 * absFloat(p-0.5),
		TopFeatures:     m.topFeatures(fv, 5),
		FallbackTrained: m.FallbackTrained,
	}, nil
}

// topFeatures ranks features by path importance for this input and keeps
// the k heaviest non-zero entries.
func (m *Model) topFeatures(fv domain.FeatureVector, k int) []domain.FeatureImportance {
	weights := m.Ensemble.FeatureImportance(fv)

	ranked := make([]domain.FeatureImportance, 0, len(weights))
	for i, w := range weights {
		if w > 0 {
			ranked = append(ranked, domain.FeatureImportance{Name: domain.FeatureNames[i], Weight: w})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
