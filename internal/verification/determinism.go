package verification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/backtest"
	"options-strategy-lab/internal/domain"
)

// DeterminismVerifier replays a backtest configuration twice and
// confirms both runs produce identical output.
type DeterminismVerifier struct {
	cfg    backtest.Config
	logger zerolog.Logger
}

// NewDeterminismVerifier creates a verifier for one backtest configuration.
func NewDeterminismVerifier(cfg backtest.Config, logger zerolog.Logger) *DeterminismVerifier {
	return &DeterminismVerifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "determinism_verifier").Logger(),
	}
}

// VerifyRun executes two independent simulators over the same inputs and
// compares their results field by field.
func (v *DeterminismVerifier) VerifyRun(ctx context.Context, bars domain.BarSeries, signals []domain.Signal) (*VerificationResult, error) {
	first, err := v.runOnce(ctx, bars, signals)
	if err != nil {
		return nil, fmt.Errorf("first run: %w", err)
	}
	second, err := v.runOnce(ctx, bars, signals)
	if err != nil {
		return nil, fmt.Errorf("second run: %w", err)
	}

	divergences := CompareResults(first, second)
	result := &VerificationResult{
		RunID:       first.RunID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}

	if result.Match {
		v.logger.Info().Str("run_id", result.RunID).Msg("determinism verified")
	} else {
		v.logger.Warn().
			Str("run_id", result.RunID).
			Int("divergences", len(divergences)).
			Msg("determinism violation detected")
	}
	return result, nil
}

func (v *DeterminismVerifier) runOnce(ctx context.Context, bars domain.BarSeries, signals []domain.Signal) (*domain.BacktestResult, error) {
	sim, err := backtest.NewSimulator(v.cfg, nil, v.logger)
	if err != nil {
		return nil, err
	}
	return sim.Run(ctx, bars, signals)
}
