package domain

// Strategy type identifiers.
const (
	StrategyTypeSignalThreshold = "SIGNAL_THRESHOLD"
	StrategyTypeRegimeFilter    = "REGIME_FILTER"
	StrategyTypeBuyAndHold      = "BUY_AND_HOLD"
)

// SignalThresholdParams configures the ML-probability driven strategy.
type SignalThresholdParams struct {
	EntryProbability float64 // go long when calibrated probability >= this
	ExitProbability  float64 // flatten when probability <= this
	MaxHoldBars      int     // force exit after this many bars, 0 = unlimited
}

// RegimeFilterParams configures the regime-gated exposure strategy.
type RegimeFilterParams struct {
	LongRegimes   []Regime // regimes under which the strategy holds long
	ExitRegimes   []Regime // regimes that force a flat book regardless of confidence
	MinConfidence float64  // ignore classifications below this confidence
}

// BuyAndHoldParams configures the baseline strategy. No parameters today,
// kept as a struct so the union stays uniform.
type BuyAndHoldParams struct{}

// StrategyConfig is a tagged union: Type selects which params field is set.
// Exactly one of the pointer fields must be non-nil and must match Type.
// This replaces open-ended key/value parameter bags so cross-parameter
// validation never has to assume runtime shapes.
type StrategyConfig struct {
	Type string

	SignalThreshold *SignalThresholdParams
	RegimeFilter    *RegimeFilterParams
	BuyAndHold      *BuyAndHoldParams
}
