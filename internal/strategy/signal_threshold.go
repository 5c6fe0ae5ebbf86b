package strategy

import (
	"fmt"

	"options-strategy-lab/internal/domain"
)

// SignalThresholdStrategy enters when the calibrated model probability
// crosses the entry threshold and flattens when it decays to the exit
// threshold or the position has been held too long.
type SignalThresholdStrategy struct {
	EntryProbability float64
	ExitProbability  float64
	MaxHoldBars      int // 0 = unlimited
}

// NewSignalThresholdStrategy creates a new SignalThresholdStrategy.
func NewSignalThresholdStrategy(entry, exit float64, maxHoldBars int) *SignalThresholdStrategy {
	return &SignalThresholdStrategy{
		EntryProbability: entry,
		ExitProbability:  exit,
		MaxHoldBars:      maxHoldBars,
	}
}

// ID returns the strategy identifier including parameters.
func (s *SignalThresholdStrategy) ID() string {
	return fmt.Sprintf("%s_%.2f_%.2f_%d", domain.StrategyTypeSignalThreshold,
		s.EntryProbability, s.ExitProbability, s.MaxHoldBars)
}

// Signals requires an aligned probability series.
func (s *SignalThresholdStrategy) Signals(input *Input) ([]domain.Signal, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Probabilities == nil {
		return nil, fmt.Errorf("%w: probability series is required", ErrMisalignedData)
	}

	signals := make([]domain.Signal, len(input.Bars))
	holding := false
	heldBars := 0

	for i, p := range input.Probabilities {
		signals[i] = domain.Signal{Action: domain.SignalHold}

		if holding {
			heldBars++
			switch {
			case p <= s.ExitProbability:
				signals[i] = domain.Signal{
					Action: domain.SignalExit,
					Reason: fmt.Sprintf("probability %.3f <= exit threshold %.2f", p, s.ExitProbability),
				}
				holding = false
			case s.MaxHoldBars > 0 && heldBars >= s.MaxHoldBars:
				signals[i] = domain.Signal{
					Action: domain.SignalExit,
					Reason: fmt.Sprintf("held %d bars, max %d", heldBars, s.MaxHoldBars),
				}
				holding = false
			}
			continue
		}

		if p >= s.EntryProbability {
			signals[i] = domain.Signal{
				Action: domain.SignalEnter,
				Reason: fmt.Sprintf("probability %.3f >= entry threshold %.2f", p, s.EntryProbability),
			}
			holding = true
			heldBars = 0
		}
	}

	return signals, nil
}

var _ Strategy = (*SignalThresholdStrategy)(nil)
