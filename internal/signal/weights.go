package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"options-strategy-lab/internal/domain"
)

// WeightsVersion is the current serialized weights schema version.
// Payloads carrying any other version are rejected.
const WeightsVersion = 1

// Weight source labels.
const (
	SourceProduction = "production"
	SourceFallback   = "fallback"
)

// Weights decode errors.
var (
	ErrWeightsVersion   = errors.New("unsupported weights version")
	ErrWeightsMalformed = errors.New("malformed weights payload")
)

// weightsFile is the on-disk JSON schema for trained model weights.
type weightsFile struct {
	Version      int         `json:"version"`
	FeatureCount int         `json:"feature_count"`
	FeatureNames []string    `json:"feature_names"`
	Trees        []*Tree     `json:"trees"`
	Calibration  Calibration `json:"calibration"`
	Source       string      `json:"source"`
	TrainedAt    time.Time   `json:"trained_at"`
}

// EncodeWeights serializes a trained model into the versioned schema.
func EncodeWeights(m *Model, trainedAt time.Time) ([]byte, error) {
	if m == nil || m.Ensemble == nil {
		return nil, ErrNotTrained
	}
	if err := m.Ensemble.validate(); err != nil {
		return nil, err
	}

	source := SourceProduction
	if m.FallbackTrained {
		source = SourceFallback
	}

	return json.MarshalIndent(weightsFile{
		Version:      WeightsVersion,
		FeatureCount: m.Ensemble.FeatureCount,
		FeatureNames: domain.FeatureNames[:],
		Trees:        m.Ensemble.Trees,
		Calibration:  m.Calibration,
		Source:       source,
		TrainedAt:    trainedAt.UTC(),
	}, "", "  ")
}

// DecodeWeights parses and validates a weights payload. Malformed or
// version-mismatched payloads are rejected with a typed error; the model
// is never partially constructed.
func DecodeWeights(data []byte) (*Model, error) {
	var wf weightsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeightsMalformed, err)
	}

	if wf.Version != WeightsVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWeightsVersion, wf.Version, WeightsVersion)
	}
	if wf.FeatureCount != domain.FeatureCount {
		return nil, fmt.Errorf("%w: feature count %d, want %d", ErrWeightsMalformed, wf.FeatureCount, domain.FeatureCount)
	}
	if len(wf.FeatureNames) != domain.FeatureCount {
		return nil, fmt.Errorf("%w: %d feature names, want %d", ErrWeightsMalformed, len(wf.FeatureNames), domain.FeatureCount)
	}
	for i, name := range wf.FeatureNames {
		if name != domain.FeatureNames[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, want %q", ErrWeightsMalformed, i, name, domain.FeatureNames[i])
		}
	}
	if math.IsNaN(wf.Calibration.A) || math.IsInf(wf.Calibration.A, 0) ||
		math.IsNaN(wf.Calibration.B) || math.IsInf(wf.Calibration.B, 0) {
		return nil, fmt.Errorf("%w: non-finite calibration", ErrWeightsMalformed)
	}

	ensemble := &Ensemble{Trees: wf.Trees, FeatureCount: wf.FeatureCount}
	if err := ensemble.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeightsMalformed, err)
	}

	return &Model{
		Ensemble:        ensemble,
		Calibration:     wf.Calibration,
		FallbackTrained: wf.Source == SourceFallback,
	}, nil
}
