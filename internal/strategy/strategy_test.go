package strategy

import (
	"errors"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
)

func inputBars(n int) domain.BarSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(domain.BarSeries, n)
	for i := range bars {
		bars[i] = domain.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1_000_000,
		}
	}
	return bars
}

func actions(signals []domain.Signal) []domain.SignalAction {
	out := make([]domain.SignalAction, len(signals))
	for i, s := range signals {
		out[i] = s.Action
	}
	return out
}

func TestInputValidate(t *testing.T) {
	if err := (&Input{}).Validate(); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	in := &Input{Bars: inputBars(5), Probabilities: []float64{0.5, 0.5}}
	if err := in.Validate(); !errors.Is(err, ErrMisalignedData) {
		t.Errorf("expected ErrMisalignedData for short probabilities, got %v", err)
	}

	in = &Input{Bars: inputBars(5), Regimes: make([]domain.RegimeClassification, 3)}
	if err := in.Validate(); !errors.Is(err, ErrMisalignedData) {
		t.Errorf("expected ErrMisalignedData for short regimes, got %v", err)
	}

	in = &Input{Bars: inputBars(5)}
	if err := in.Validate(); err != nil {
		t.Errorf("bars-only input should validate, got %v", err)
	}
}

func TestSignalThreshold_EnterAndExit(t *testing.T) {
	s := NewSignalThresholdStrategy(0.60, 0.45, 0)
	in := &Input{
		Bars:          inputBars(6),
		Probabilities: []float64{0.50, 0.65, 0.62, 0.44, 0.70, 0.30},
	}

	signals, err := s.Signals(in)
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.SignalAction{
		domain.SignalHold,  // below entry
		domain.SignalEnter, // 0.65 >= 0.60
		domain.SignalHold,  // holding
		domain.SignalExit,  // 0.44 <= 0.45
		domain.SignalEnter, // re-entry at 0.70
		domain.SignalExit,  // 0.30 <= 0.45
	}
	got := actions(signals)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signal[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSignalThreshold_MaxHoldBars(t *testing.T) {
	s := NewSignalThresholdStrategy(0.60, 0.20, 2)
	in := &Input{
		Bars:          inputBars(5),
		Probabilities: []float64{0.70, 0.70, 0.70, 0.70, 0.70},
	}

	signals, err := s.Signals(in)
	if err != nil {
		t.Fatal(err)
	}

	if signals[0].Action != domain.SignalEnter {
		t.Errorf("signal[0] = %s, want ENTER", signals[0].Action)
	}
	if signals[2].Action != domain.SignalExit {
		t.Errorf("signal[2] = %s, want EXIT after 2 held bars", signals[2].Action)
	}
	// Re-entry on the bar after the forced exit.
	if signals[3].Action != domain.SignalEnter {
		t.Errorf("signal[3] = %s, want ENTER", signals[3].Action)
	}
}

func TestSignalThreshold_RequiresProbabilities(t *testing.T) {
	s := NewSignalThresholdStrategy(0.60, 0.45, 0)
	if _, err := s.Signals(&Input{Bars: inputBars(3)}); !errors.Is(err, ErrMisalignedData) {
		t.Errorf("expected ErrMisalignedData without probabilities, got %v", err)
	}
}

func TestRegimeFilter_GatesOnRegimeAndConfidence(t *testing.T) {
	s := NewRegimeFilterStrategy(
		[]domain.Regime{domain.RegimeBullTrend},
		[]domain.Regime{domain.RegimeEventRisk},
		0.50,
	)

	regimes := []domain.RegimeClassification{
		{Regime: domain.RegimeSidewaysLowVol, Confidence: 0.9},
		{Regime: domain.RegimeBullTrend, Confidence: 0.3}, // too uncertain to enter
		{Regime: domain.RegimeBullTrend, Confidence: 0.8},
		{Regime: domain.RegimeBearTrend, Confidence: 0.4}, // too uncertain to exit
		{Regime: domain.RegimeBearTrend, Confidence: 0.7},
		{Regime: domain.RegimeBullTrend, Confidence: 0.9},
		{Regime: domain.RegimeEventRisk, Confidence: 0.1}, // exit regime ignores confidence
	}
	in := &Input{Bars: inputBars(len(regimes)), Regimes: regimes}

	signals, err := s.Signals(in)
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.SignalAction{
		domain.SignalHold,
		domain.SignalHold,
		domain.SignalEnter,
		domain.SignalHold,
		domain.SignalExit,
		domain.SignalEnter,
		domain.SignalExit,
	}
	got := actions(signals)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signal[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuyAndHold(t *testing.T) {
	s := NewBuyAndHoldStrategy()
	signals, err := s.Signals(&Input{Bars: inputBars(10)})
	if err != nil {
		t.Fatal(err)
	}

	if signals[0].Action != domain.SignalEnter {
		t.Errorf("signal[0] = %s, want ENTER", signals[0].Action)
	}
	for i := 1; i < len(signals); i++ {
		if signals[i].Action != domain.SignalHold {
			t.Errorf("signal[%d] = %s, want HOLD", i, signals[i].Action)
		}
	}
}

func TestStrategyIDsIncludeParameters(t *testing.T) {
	a := NewSignalThresholdStrategy(0.60, 0.45, 0).ID()
	b := NewSignalThresholdStrategy(0.65, 0.45, 0).ID()
	if a == b {
		t.Errorf("IDs must differ across parameters, both %s", a)
	}
}
