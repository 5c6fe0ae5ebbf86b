// Package orchestrator coordinates the end-to-end research pipeline:
// market data → sufficiency → features → regime/signal → backtest → persist.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/backtest"
	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/features"
	"options-strategy-lab/internal/marketdata"
	"options-strategy-lab/internal/observability"
	"options-strategy-lab/internal/pipeline"
	"options-strategy-lab/internal/regime"
	"options-strategy-lab/internal/signal"
	"options-strategy-lab/internal/storage"
	"options-strategy-lab/internal/strategy"
)

// neutralProbability is used for bars before the model has enough history.
const neutralProbability = 0.5

// Options configures an Orchestrator.
type Options struct {
	// Required providers
	Bars marketdata.BarProvider
	IV   marketdata.IVMetricsProvider

	// Optional persistence. Nil stores skip the corresponding phase.
	BarStore     storage.BarStore
	FeatureStore storage.FeatureStore
	TradeStore   storage.TradeStore
	ResultStore  storage.BacktestResultStore

	// Signal model service
	Signal *signal.Service

	// Strategy and backtest configuration
	StrategyConfigs []domain.StrategyConfig
	Backtest        backtest.Config // template; symbol and strategy ID set per run

	// VolIndex is the external volatility index level fed to the regime
	// classifier (VIX-like). Zero means unknown.
	VolIndex float64

	Logger zerolog.Logger
}

// Orchestrator runs the pipeline for a batch of symbols.
type Orchestrator struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "orchestrator").Logger(),
	}
}

// RunResult contains results from one batch execution.
type RunResult struct {
	SymbolsProcessed int
	RunsCompleted    int
	Results          []*domain.BacktestResult
	Errors           []string
}

// Run executes the pipeline for each symbol in order. Symbols are
// processed sequentially; context cancellation stops further scheduling
// while keeping results already completed.
func (o *Orchestrator) Run(ctx context.Context, symbols []string, start, end time.Time) (*RunResult, error) {
	result := &RunResult{}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch stopped before %s: %v", symbol, err))
			return result, err
		}

		began := time.Now()
		runs, err := o.runSymbol(ctx, symbol, start, end)
		result.SymbolsProcessed++
		result.Results = append(result.Results, runs...)
		result.RunsCompleted += len(runs)

		status := "ok"
		if err != nil {
			status = "error"
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", symbol, err))
			o.logger.Error().Err(err).Str("symbol", symbol).Msg("symbol pipeline failed")
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
		}
		observability.RecordPipelineRun("symbol", status, time.Since(began).Seconds())
	}

	o.logger.Info().
		Int("symbols", result.SymbolsProcessed).
		Int("runs", result.RunsCompleted).
		Int("errors", len(result.Errors)).
		Msg("batch complete")

	if len(result.Errors) == 0 {
		observability.DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()
	}
	return result, nil
}

// runSymbol executes every configured strategy against one symbol.
func (o *Orchestrator) runSymbol(ctx context.Context, symbol string, start, end time.Time) ([]*domain.BacktestResult, error) {
	// Phase 1: load bars.
	fetchStart := time.Now()
	bars, err := o.opts.Bars.GetBars(ctx, symbol, start, end)
	observability.RecordProviderCall("get_bars", time.Since(fetchStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	observability.RecordBarsFetched(len(bars))

	// Phase 2: sufficiency gate.
	suff := pipeline.NewSufficiencyChecker().Check(symbol, bars)
	if !suff.AllPass {
		observability.RecordSufficiencyFailure()
		return nil, fmt.Errorf("insufficient data: %v", suffSummary(suff))
	}

	if o.opts.BarStore != nil {
		if err := o.opts.BarStore.InsertBulk(ctx, symbol, bars); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist bars: %w", err)
		}
	}

	// Phase 3: features.
	iv, err := o.opts.IV.GetIVMetrics(ctx, symbol, end)
	if err != nil {
		return nil, fmt.Errorf("load IV metrics: %w", err)
	}

	builder, err := features.NewBuilder(bars)
	if err != nil {
		return nil, fmt.Errorf("feature builder: %w", err)
	}
	vectors, err := builder.BuildAll(iv)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}

	if o.opts.FeatureStore != nil {
		dates := make([]time.Time, len(vectors))
		for k := range vectors {
			dates[k] = bars[builder.MinIndex()+k].Date
		}
		if err := o.opts.FeatureStore.InsertBulk(ctx, symbol, dates, vectors); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist features: %w", err)
		}
	}

	// Phase 4: per-bar probabilities and regimes.
	probs, err := o.buildProbabilities(ctx, bars, builder, vectors)
	if err != nil {
		return nil, err
	}
	regimes, err := o.buildRegimes(ctx, bars, iv)
	if err != nil {
		return nil, err
	}

	// Phase 5: backtest each configured strategy.
	var results []*domain.BacktestResult
	for _, cfg := range o.opts.StrategyConfigs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		strat, err := strategy.FromConfig(cfg)
		if err != nil {
			return results, fmt.Errorf("strategy %s: %w", cfg.Type, err)
		}

		signals, err := strat.Signals(&strategy.Input{
			Bars:          bars,
			Probabilities: probs,
			Regimes:       regimes,
		})
		if err != nil {
			return results, fmt.Errorf("signals for %s: %w", strat.ID(), err)
		}

		btCfg := o.opts.Backtest
		btCfg.Symbol = symbol
		btCfg.StrategyID = strat.ID()
		btCfg.StartDate = start
		btCfg.EndDate = end

		sim, err := backtest.NewSimulator(btCfg, nil, o.logger)
		if err != nil {
			return results, fmt.Errorf("simulator for %s: %w", strat.ID(), err)
		}

		res, err := sim.Run(ctx, bars, signals)
		if err != nil {
			observability.RecordBacktestRun("error", 0)
			return results, fmt.Errorf("backtest %s: %w", strat.ID(), err)
		}
		observability.RecordBacktestRun("ok", len(res.Trades))

		if err := o.persistRun(ctx, res); err != nil {
			return results, err
		}
		results = append(results, res)
	}

	return results, nil
}

// buildProbabilities produces one model probability per bar, neutral
// before the model lookback is satisfied.
func (o *Orchestrator) buildProbabilities(ctx context.Context, bars domain.BarSeries, builder *features.Builder, vectors []domain.FeatureVector) ([]float64, error) {
	probs := make([]float64, len(bars))
	for i := range probs {
		probs[i] = neutralProbability
	}
	if o.opts.Signal == nil {
		return probs, nil
	}

	model, err := o.opts.Signal.GetOrTrain(ctx)
	if err != nil {
		return nil, fmt.Errorf("signal model: %w", err)
	}

	for k, fv := range vectors {
		i := builder.MinIndex() + k
		if i < features.ModelLookback {
			continue
		}
		pred, err := model.Predict(fv)
		if err != nil {
			return nil, fmt.Errorf("predict at bar %d: %w", i, err)
		}
		probs[i] = pred.Probability
	}
	return probs, nil
}

// buildRegimes classifies each bar with at least the model lookback of
// history. Earlier bars get a zero-confidence placeholder so no
// regime-gated strategy acts on them.
func (o *Orchestrator) buildRegimes(ctx context.Context, bars domain.BarSeries, iv domain.IVMetrics) ([]domain.RegimeClassification, error) {
	classifier := regime.NewClassifier()
	regimes := make([]domain.RegimeClassification, len(bars))
	for i := range regimes {
		regimes[i] = domain.RegimeClassification{Regime: domain.RegimeSidewaysHighVol, Confidence: 0}
	}

	for i := features.ModelLookback - 1; i < len(bars); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc, err := classifier.Classify(bars[:i+1], iv, o.opts.VolIndex)
		if err != nil {
			return nil, fmt.Errorf("classify at bar %d: %w", i, err)
		}
		regimes[i] = rc
	}
	return regimes, nil
}

// persistRun stores the result and its trades, tolerating reruns.
func (o *Orchestrator) persistRun(ctx context.Context, res *domain.BacktestResult) error {
	if o.opts.ResultStore != nil {
		if err := o.opts.ResultStore.Insert(ctx, res); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("persist result %s: %w", res.RunID, err)
		}
	}
	if o.opts.TradeStore != nil && len(res.Trades) > 0 {
		if err := o.opts.TradeStore.InsertBulk(ctx, res.Trades); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("persist trades for %s: %w", res.RunID, err)
		}
	}
	return nil
}

func suffSummary(r *pipeline.SufficiencyResult) []string {
	var failed []string
	for _, c := range r.Checks {
		if !c.Pass {
			failed = append(failed, fmt.Sprintf("%s: %s (need %s)", c.Name, c.Actual, c.Threshold))
		}
	}
	return failed
}
