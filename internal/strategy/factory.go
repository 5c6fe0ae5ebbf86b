package strategy

import (
	"errors"
	"fmt"

	"options-strategy-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingParams       = errors.New("strategy config is missing its parameter block")
	ErrInvalidParams       = errors.New("invalid strategy parameters")
)

// FromConfig creates a Strategy from domain.StrategyConfig.
// Validates required parameters per strategy type.
// Returns clear errors for missing/invalid params.
func FromConfig(cfg domain.StrategyConfig) (Strategy, error) {
	switch cfg.Type {
	case domain.StrategyTypeSignalThreshold:
		return fromSignalThresholdConfig(cfg)
	case domain.StrategyTypeRegimeFilter:
		return fromRegimeFilterConfig(cfg)
	case domain.StrategyTypeBuyAndHold:
		return NewBuyAndHoldStrategy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategyType, cfg.Type)
	}
}

func fromSignalThresholdConfig(cfg domain.StrategyConfig) (*SignalThresholdStrategy, error) {
	p := cfg.SignalThreshold
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParams, cfg.Type)
	}
	if p.EntryProbability <= 0 || p.EntryProbability >= 1 {
		return nil, fmt.Errorf("%w: entry probability %v not in (0,1)", ErrInvalidParams, p.EntryProbability)
	}
	if p.ExitProbability < 0 || p.ExitProbability >= p.EntryProbability {
		return nil, fmt.Errorf("%w: exit probability %v must be in [0, entry)", ErrInvalidParams, p.ExitProbability)
	}
	if p.MaxHoldBars < 0 {
		return nil, fmt.Errorf("%w: max hold bars %d must not be negative", ErrInvalidParams, p.MaxHoldBars)
	}
	return NewSignalThresholdStrategy(p.EntryProbability, p.ExitProbability, p.MaxHoldBars), nil
}

func fromRegimeFilterConfig(cfg domain.StrategyConfig) (*RegimeFilterStrategy, error) {
	p := cfg.RegimeFilter
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParams, cfg.Type)
	}
	if len(p.LongRegimes) == 0 {
		return nil, fmt.Errorf("%w: at least one long regime is required", ErrInvalidParams)
	}
	if p.MinConfidence < 0 || p.MinConfidence > 1 {
		return nil, fmt.Errorf("%w: min confidence %v not in [0,1]", ErrInvalidParams, p.MinConfidence)
	}
	for _, r := range p.LongRegimes {
		for _, x := range p.ExitRegimes {
			if r == x {
				return nil, fmt.Errorf("%w: regime %s is both long and exit", ErrInvalidParams, r)
			}
		}
	}
	return NewRegimeFilterStrategy(p.LongRegimes, p.ExitRegimes, p.MinConfidence), nil
}
