package signal

import (
	"errors"
	"fmt"
	"math/rand"

	"options-strategy-lab/internal/domain"
)

// Default training parameters.
const (
	DefaultNumTrees         = 10
	DefaultMaxDepth         = 5
	DefaultMinSamplesSplit  = 5
	DefaultFeatureSubsample = 0.7
)

// Training errors.
var (
	ErrNoTrainingData  = errors.New("no training data")
	ErrLengthMismatch  = errors.New("samples and targets length mismatch")
	ErrNotTrained      = errors.New("ensemble is not trained")
	ErrFeatureMismatch = errors.New("feature count mismatch")
)

// TrainConfig controls ensemble training.
type TrainConfig struct {
	NumTrees         int
	MaxDepth         int
	MinSamplesSplit  int
	FeatureSubsample float64
}

// DefaultTrainConfig returns the standard training parameters.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		NumTrees:         DefaultNumTrees,
		MaxDepth:         DefaultMaxDepth,
		MinSamplesSplit:  DefaultMinSamplesSplit,
		FeatureSubsample: DefaultFeatureSubsample,
	}
}

// Ensemble is a set of independently bootstrapped regression trees.
// Tree count and feature count are fixed at training time.
type Ensemble struct {
	Trees        []*Tree `json:"trees"`
	FeatureCount int     `json:"feature_count"`
}

// TrainEnsemble trains cfg.NumTrees trees, each on a bootstrap resample of
// the input and a random feature subset. All randomness comes from rng so
// identical seeds reproduce identical ensembles.
func TrainEnsemble(samples [][]float64, targets []float64, cfg TrainConfig, rng *rand.Rand) (*Ensemble, error) {
	if len(samples) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(samples) != len(targets) {
		return nil, fmt.Errorf("%w: %d samples, %d targets", ErrLengthMismatch, len(samples), len(targets))
	}

	featureCount := len(samples[0])
	treeCfg := TreeConfig{MaxDepth: cfg.MaxDepth, MinSamplesSplit: cfg.MinSamplesSplit}

	trees := make([]*Tree, cfg.NumTrees)
	for t := 0; t < cfg.NumTrees; t++ {
		bootSamples := make([][]float64, len(samples))
		bootTargets := make([]float64, len(targets))
		for i := range bootSamples {
			j := rng.Intn(len(samples))
			bootSamples[i] = samples[j]
			bootTargets[i] = targets[j]
		}

		pool := sampleFeatures(featureCount, cfg.FeatureSubsample, rng)
		trees[t] = trainTree(bootSamples, bootTargets, pool, treeCfg)
	}

	return &Ensemble{Trees: trees, FeatureCount: featureCount}, nil
}

// Predict returns the mean of the tree predictions for the feature vector.
func (e *Ensemble) Predict(fv domain.FeatureVector) (float64, error) {
	if len(e.Trees) == 0 {
		return 0, ErrNotTrained
	}
	if e.FeatureCount != len(fv) {
		return 0, fmt.Errorf("%w: ensemble has %d, vector has %d", ErrFeatureMismatch, e.FeatureCount, len(fv))
	}

	row := fv[:]
	sum := 0.0
	for _, tree := range e.Trees {
		v, _ := tree.Predict(row)
		sum += v
	}
	return sum / float64(len(e.Trees)), nil
}

// FeatureImportance returns, for one input, the normalized count of how
// often each feature appears on the decision paths actually taken across
// all trees. This is per-prediction path importance, not global
// permutation importance.
func (e *Ensemble) FeatureImportance(fv domain.FeatureVector) []float64 {
	counts := make([]float64, e.FeatureCount)
	total := 0.0

	row := fv[:]
	for _, tree := range e.Trees {
		_, path := tree.Predict(row)
		for _, f := range path {
			counts[f]++
			total++
		}
	}

	if total > 0 {
		for i := range counts {
			counts[i] /= total
		}
	}
	return counts
}

// validate checks a deserialized ensemble: non-empty, consistent feature
// count, structurally sound trees.
func (e *Ensemble) validate() error {
	if len(e.Trees) == 0 {
		return ErrNotTrained
	}
	if e.FeatureCount <= 0 {
		return fmt.Errorf("%w: feature count %d", ErrFeatureMismatch, e.FeatureCount)
	}
	for i, tree := range e.Trees {
		if tree == nil || !tree.validate(e.FeatureCount) {
			return fmt.Errorf("tree %d is structurally invalid", i)
		}
	}
	return nil
}
