package strategy

import (
	"fmt"
	"sort"
	"strings"

	"options-strategy-lab/internal/domain"
)

// RegimeFilterStrategy holds exposure only while the classified regime
// belongs to its long set. Exit regimes flatten the book regardless of
// classification confidence.
type RegimeFilterStrategy struct {
	LongRegimes   map[domain.Regime]bool
	ExitRegimes   map[domain.Regime]bool
	MinConfidence float64
}

// NewRegimeFilterStrategy creates a new RegimeFilterStrategy.
func NewRegimeFilterStrategy(long, exit []domain.Regime, minConfidence float64) *RegimeFilterStrategy {
	s := &RegimeFilterStrategy{
		LongRegimes:   make(map[domain.Regime]bool, len(long)),
		ExitRegimes:   make(map[domain.Regime]bool, len(exit)),
		MinConfidence: minConfidence,
	}
	for _, r := range long {
		s.LongRegimes[r] = true
	}
	for _, r := range exit {
		s.ExitRegimes[r] = true
	}
	return s
}

// ID returns the strategy identifier including parameters.
func (s *RegimeFilterStrategy) ID() string {
	long := make([]string, 0, len(s.LongRegimes))
	for r := range s.LongRegimes {
		long = append(long, string(r))
	}
	sort.Strings(long)
	return fmt.Sprintf("%s_%s_%.2f", domain.StrategyTypeRegimeFilter, strings.Join(long, "+"), s.MinConfidence)
}

// Signals requires an aligned regime series.
func (s *RegimeFilterStrategy) Signals(input *Input) ([]domain.Signal, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Regimes == nil {
		return nil, fmt.Errorf("%w: regime series is required", ErrMisalignedData)
	}

	signals := make([]domain.Signal, len(input.Bars))
	holding := false

	for i, rc := range input.Regimes {
		signals[i] = domain.Signal{Action: domain.SignalHold}

		if holding {
			switch {
			case s.ExitRegimes[rc.Regime]:
				signals[i] = domain.Signal{
					Action: domain.SignalExit,
					Reason: fmt.Sprintf("exit regime %s", rc.Regime),
				}
				holding = false
			case !s.LongRegimes[rc.Regime] && rc.Confidence >= s.MinConfidence:
				signals[i] = domain.Signal{
					Action: domain.SignalExit,
					Reason: fmt.Sprintf("regime %s left long set (confidence %.2f)", rc.Regime, rc.Confidence),
				}
				holding = false
			}
			continue
		}

		if s.LongRegimes[rc.Regime] && rc.Confidence >= s.MinConfidence && !s.ExitRegimes[rc.Regime] {
			signals[i] = domain.Signal{
				Action: domain.SignalEnter,
				Reason: fmt.Sprintf("regime %s (confidence %.2f)", rc.Regime, rc.Confidence),
			}
			holding = true
		}
	}

	return signals, nil
}

var _ Strategy = (*RegimeFilterStrategy)(nil)
