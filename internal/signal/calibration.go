package signal

import "math"

// Calibration hyperparameters: batch gradient descent over the full
// validation split with a fixed learning rate.
const (
	calibrationLearningRate = 0.01
	calibrationIterations   = 100
)

// Probability clamp bounds. Calibrated probabilities never touch 0 or 1.
const (
	MinProbability = 0.01
	MaxProbability = 0.99
)

// Calibration holds the Platt scaling parameters mapping a raw ensemble
// score to a probability: sigmoid(A*score + B).
type Calibration struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// FitCalibration fits (A, B) by minimizing cross-entropy of
// sigmoid(A*score + B) against binary targets on a held-out split.
func FitCalibration(scores []float64, targets []float64) Calibration {
	// Identity-ish starting point: A=1, B=0.
	cal := Calibration{A: 1, B: 0}
	n := float64(len(scores))
	if n == 0 {
		return cal
	}

	for iter := 0; iter < calibrationIterations; iter++ {
		gradA, gradB := 0.0, 0.0
		for i, s := range scores {
			p := sigmoid(cal.A*s + cal.B)
			diff := p - targets[i]
			gradA += diff * s
			gradB += diff
		}
		cal.A -= calibrationLearningRate * gradA / n
		cal.B -= calibrationLearningRate * gradB / n
	}
	return cal
}

// Apply maps a raw score to a calibrated probability in
// [MinProbability, MaxProbability].
func (c Calibration) Apply(score float64) float64 {
	p := sigmoid(c.A*score + c.B)
	if p < MinProbability {
		return MinProbability
	}
	if p > MaxProbability {
		return MaxProbability
	}
	return p
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
