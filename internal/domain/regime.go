package domain

// Regime is a discrete classification of current market behavior.
type Regime string

// Regime constants.
const (
	RegimeBullTrend       Regime = "BULL_TREND"
	RegimeBearTrend       Regime = "BEAR_TREND"
	RegimeSidewaysLowVol  Regime = "SIDEWAYS_LOW_VOL"
	RegimeSidewaysHighVol Regime = "SIDEWAYS_HIGH_VOL"
	RegimeEventRisk       Regime = "EVENT_RISK"
)

// Valid reports whether r is one of the defined regime constants.
func (r Regime) Valid() bool {
	switch r {
	case RegimeBullTrend, RegimeBearTrend, RegimeSidewaysLowVol, RegimeSidewaysHighVol, RegimeEventRisk:
		return true
	}
	return false
}

// RegimeClassification is the output of the regime rule cascade.
// Rationale holds at most 3 human-readable strings with the numeric
// evidence that fired the branch; they feed the UI, not downstream math.
type RegimeClassification struct {
	Regime     Regime
	Confidence float64 // [0,1]
	Rationale  []string
}

// MLPrediction is the calibrated signal model output surfaced to callers.
type MLPrediction struct {
	Probability     float64 // P(up move), clamped to [0.01, 0.99]
	Confidence      float64 // 2*|p - 0.5|
	TopFeatures     []FeatureImportance
	FallbackTrained bool // true when the model self-trained on synthetic data
}

// FeatureImportance names one feature's share of the decision paths taken.
type FeatureImportance struct {
	Name   string
	Weight float64 // normalized, sums to 1 across all features
}
