package verification

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/backtest"
	"options-strategy-lab/internal/domain"
)

func verifierBars(n int) domain.BarSeries {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(domain.BarSeries, n)
	for i := range bars {
		c := 100 + 10*math.Sin(float64(i)/25)
		bars[i] = domain.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

func verifierSignals(n int) []domain.Signal {
	signals := make([]domain.Signal, n)
	holding := false
	for i := range signals {
		signals[i] = domain.Signal{Action: domain.SignalHold}
		switch {
		case !holding && i%40 == 10:
			signals[i].Action = domain.SignalEnter
			holding = true
		case holding && i%40 == 30:
			signals[i].Action = domain.SignalExit
			holding = false
		}
	}
	return signals
}

func TestVerifyRun_IdenticalInputsMatch(t *testing.T) {
	cfg := backtest.DefaultConfig("SPY", "TEST")
	cfg.Seed = 42

	v := NewDeterminismVerifier(cfg, zerolog.Nop())
	result, err := v.VerifyRun(context.Background(), verifierBars(300), verifierSignals(300))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Match {
		t.Fatalf("identical inputs must match, divergences: %+v", result.Divergences)
	}
	if result.RunID == "" {
		t.Error("result must carry the run ID")
	}
}

func TestVerifyRun_OptionsModeMatch(t *testing.T) {
	cfg := backtest.DefaultConfig("SPY", "TEST_OPT")
	cfg.TradeOptions = true
	cfg.Seed = 7

	v := NewDeterminismVerifier(cfg, zerolog.Nop())
	result, err := v.VerifyRun(context.Background(), verifierBars(300), verifierSignals(300))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Match {
		t.Fatalf("option runs must also be deterministic, divergences: %+v", result.Divergences)
	}
}

func TestCompareResults_ReportsTamperedFields(t *testing.T) {
	cfg := backtest.DefaultConfig("SPY", "TEST")
	sim, err := backtest.NewSimulator(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	a, err := sim.Run(context.Background(), verifierBars(300), verifierSignals(300))
	if err != nil {
		t.Fatal(err)
	}

	sim2, err := backtest.NewSimulator(cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	b, err := sim2.Run(context.Background(), verifierBars(300), verifierSignals(300))
	if err != nil {
		t.Fatal(err)
	}

	if len(b.Trades) == 0 || len(b.EquityCurve) == 0 {
		t.Fatal("test scenario must produce trades and an equity curve")
	}
	b.Trades[0].PnL += 1
	b.EquityCurve[5].Equity += 0.5

	divergences := CompareResults(a, b)
	if len(divergences) == 0 {
		t.Fatal("tampered result must produce divergences")
	}

	fields := make(map[string]bool, len(divergences))
	for _, d := range divergences {
		fields[d.Field] = true
	}
	if !fields["Trades[0].PnL"] {
		t.Errorf("expected a Trades[0].PnL divergence, got %+v", divergences)
	}
	if !fields["EquityCurve[5]"] {
		t.Errorf("expected an EquityCurve[5] divergence, got %+v", divergences)
	}
}

func TestCompareResults_IdenticalEmpty(t *testing.T) {
	a := &domain.BacktestResult{RunID: "r1", Symbol: "SPY"}
	b := &domain.BacktestResult{RunID: "r1", Symbol: "SPY"}
	if d := CompareResults(a, b); len(d) != 0 {
		t.Errorf("identical results must not diverge, got %+v", d)
	}
}
