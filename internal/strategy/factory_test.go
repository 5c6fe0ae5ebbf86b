package strategy

import (
	"errors"
	"testing"

	"options-strategy-lab/internal/domain"
)

func TestFromConfig_SignalThreshold(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		Type: domain.StrategyTypeSignalThreshold,
		SignalThreshold: &domain.SignalThresholdParams{
			EntryProbability: 0.60,
			ExitProbability:  0.45,
			MaxHoldBars:      20,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*SignalThresholdStrategy); !ok {
		t.Errorf("got %T, want *SignalThresholdStrategy", s)
	}
}

func TestFromConfig_RegimeFilter(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{
		Type: domain.StrategyTypeRegimeFilter,
		RegimeFilter: &domain.RegimeFilterParams{
			LongRegimes:   []domain.Regime{domain.RegimeBullTrend},
			ExitRegimes:   []domain.Regime{domain.RegimeEventRisk},
			MinConfidence: 0.5,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*RegimeFilterStrategy); !ok {
		t.Errorf("got %T, want *RegimeFilterStrategy", s)
	}
}

func TestFromConfig_BuyAndHold(t *testing.T) {
	s, err := FromConfig(domain.StrategyConfig{Type: domain.StrategyTypeBuyAndHold})
	if err != nil {
		t.Fatal(err)
	}
	if s.ID() != domain.StrategyTypeBuyAndHold {
		t.Errorf("ID = %s, want %s", s.ID(), domain.StrategyTypeBuyAndHold)
	}
}

func TestFromConfig_UnknownType(t *testing.T) {
	if _, err := FromConfig(domain.StrategyConfig{Type: "MARTINGALE"}); !errors.Is(err, ErrUnknownStrategyType) {
		t.Errorf("expected ErrUnknownStrategyType, got %v", err)
	}
}

func TestFromConfig_MissingParams(t *testing.T) {
	if _, err := FromConfig(domain.StrategyConfig{Type: domain.StrategyTypeSignalThreshold}); !errors.Is(err, ErrMissingParams) {
		t.Errorf("expected ErrMissingParams, got %v", err)
	}
	if _, err := FromConfig(domain.StrategyConfig{Type: domain.StrategyTypeRegimeFilter}); !errors.Is(err, ErrMissingParams) {
		t.Errorf("expected ErrMissingParams, got %v", err)
	}
}

func TestFromConfig_InvalidParams(t *testing.T) {
	cases := []struct {
		name string
		cfg  domain.StrategyConfig
	}{
		{
			name: "entry probability out of range",
			cfg: domain.StrategyConfig{
				Type:            domain.StrategyTypeSignalThreshold,
				SignalThreshold: &domain.SignalThresholdParams{EntryProbability: 1.2, ExitProbability: 0.4},
			},
		},
		{
			name: "exit at or above entry",
			cfg: domain.StrategyConfig{
				Type:            domain.StrategyTypeSignalThreshold,
				SignalThreshold: &domain.SignalThresholdParams{EntryProbability: 0.5, ExitProbability: 0.5},
			},
		},
		{
			name: "no long regimes",
			cfg: domain.StrategyConfig{
				Type:         domain.StrategyTypeRegimeFilter,
				RegimeFilter: &domain.RegimeFilterParams{MinConfidence: 0.5},
			},
		},
		{
			name: "regime both long and exit",
			cfg: domain.StrategyConfig{
				Type: domain.StrategyTypeRegimeFilter,
				RegimeFilter: &domain.RegimeFilterParams{
					LongRegimes: []domain.Regime{domain.RegimeBullTrend},
					ExitRegimes: []domain.Regime{domain.RegimeBullTrend},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromConfig(tc.cfg); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}
