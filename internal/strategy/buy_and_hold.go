package strategy

import (
	"options-strategy-lab/internal/domain"
)

// BuyAndHoldStrategy enters on the first bar and never exits; the
// backtest settles the position at end of data. Baseline for comparing
// the signal-driven strategies against.
type BuyAndHoldStrategy struct{}

// NewBuyAndHoldStrategy creates a new BuyAndHoldStrategy.
func NewBuyAndHoldStrategy() *BuyAndHoldStrategy {
	return &BuyAndHoldStrategy{}
}

// ID returns the strategy identifier.
func (s *BuyAndHoldStrategy) ID() string {
	return domain.StrategyTypeBuyAndHold
}

// Signals enters on the first bar and holds.
func (s *BuyAndHoldStrategy) Signals(input *Input) ([]domain.Signal, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	signals := make([]domain.Signal, len(input.Bars))
	for i := range signals {
		signals[i] = domain.Signal{Action: domain.SignalHold}
	}
	signals[0] = domain.Signal{Action: domain.SignalEnter, Reason: "baseline entry"}
	return signals, nil
}

var _ Strategy = (*BuyAndHoldStrategy)(nil)
