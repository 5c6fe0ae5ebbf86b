package backtest

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/idhash"
	"options-strategy-lab/internal/metrics"
	"options-strategy-lab/internal/pricing"
)

// Simulator errors.
var (
	ErrSignalMismatch = errors.New("backtest: signal stream length does not match bar series")
	ErrUnorderedBars  = errors.New("backtest: bar series is not chronological")
)

const (
	optionMultiplier = 100.0

	// deltaProxy links the decay-proxy mark to underlying moves for
	// near-the-money entries.
	deltaProxy = 0.5

	ivLookbackDays = 20
	annualization  = 252.0
	daysPerYear    = 365.0
)

// Simulator walks a bar series and an aligned signal stream, settling
// entries and exits, marking open positions, and deriving the equity
// curve and risk statistics of the run.
type Simulator struct {
	cfg    Config
	engine *pricing.Engine
	logger zerolog.Logger
}

// NewSimulator creates a Simulator. Invalid configuration is rejected
// here, before any simulation starts.
func NewSimulator(cfg Config, engine *pricing.Engine, logger zerolog.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		engine = pricing.NewEngine()
	}
	return &Simulator{cfg: cfg, engine: engine, logger: logger}, nil
}

// position tracks one open trade through the run.
type position struct {
	trade     *domain.Trade
	units     float64 // quantity times contract multiplier
	entryUnit float64 // per-unit fill including slippage
	entryCost float64
	entrySpot float64
	entryDate time.Time
	strike    float64
	expiry    time.Time
	isOption  bool
}

// Run executes one backtest. signals must be aligned index-for-index with
// bars; a nil signal stream means hold throughout. An empty bar series
// yields a zeroed, flagged result rather than an error.
func (s *Simulator) Run(ctx context.Context, bars domain.BarSeries, signals []domain.Signal) (*domain.BacktestResult, error) {
	if len(bars) == 0 {
		s.logger.Warn().
			Str("symbol", s.cfg.Symbol).
			Str("strategy", s.cfg.StrategyID).
			Msg("no price data, returning flagged result")
		return &domain.BacktestResult{
			RunID:      idhash.ComputeRunID(s.cfg.Symbol, s.cfg.StrategyID, s.cfg.StartDate, s.cfg.EndDate, s.cfg.Seed),
			Symbol:     s.cfg.Symbol,
			StrategyID: s.cfg.StrategyID,
			Warnings:   []string{"no price data: zeroed result"},
			Flagged:    true,
		}, nil
	}
	if signals != nil && len(signals) != len(bars) {
		return nil, ErrSignalMismatch
	}
	if !bars.IsChronological() {
		return nil, ErrUnorderedBars
	}

	cash := s.cfg.InitialCapital
	equity := cash
	peak := cash

	var pos *position
	var trades []*domain.Trade
	curve := make([]domain.EquityPoint, 0, len(bars))
	seq := 0

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sig := domain.Signal{Action: domain.SignalHold}
		if signals != nil {
			sig = signals[i]
		}
		last := i == len(bars)-1

		// Settle exits first so the same bar cannot both close and
		// re-enter a position.
		if pos != nil {
			var reason string
			switch {
			case pos.isOption && !bar.Date.Before(pos.expiry):
				reason = domain.ExitReasonExpiry
			case sig.Action == domain.SignalExit:
				reason = domain.ExitReasonSignal
			case last:
				reason = domain.ExitReasonEndOfData
			}
			if reason != "" {
				cash += s.closePosition(pos, s.markUnit(pos, bars, i), bar.Date, reason)
				trades = append(trades, pos.trade)
				pos = nil
			}
		}

		if pos == nil && sig.Action == domain.SignalEnter && !last {
			if p := s.openPosition(bars, i, equity, &seq); p != nil {
				cash -= p.entryCost + s.cfg.Commission
				pos = p
			}
		}

		// Mark to model.
		equity = cash
		if pos != nil {
			equity += pos.units * s.markUnit(pos, bars, i)
		}

		if equity > peak {
			peak = equity
		}
		drawdown := 0.0
		if peak > 0 {
			drawdown = (equity - peak) / peak
		}
		curve = append(curve, domain.EquityPoint{
			Date:       bar.Date,
			Equity:     equity,
			Drawdown:   drawdown,
			TradeCount: len(trades),
		})
	}

	start := bars[0].Date
	end := bars[len(bars)-1].Date

	riskMetrics := metrics.ComputeRiskMetrics(curve, trades, start, end, s.cfg.RiskFreeRate)
	warnings := metrics.Warnings(riskMetrics, len(trades), start, end)

	result := &domain.BacktestResult{
		RunID:       idhash.ComputeRunID(s.cfg.Symbol, s.cfg.StrategyID, start, end, s.cfg.Seed),
		Symbol:      s.cfg.Symbol,
		StrategyID:  s.cfg.StrategyID,
		StartDate:   start,
		EndDate:     end,
		EquityCurve: curve,
		Trades:      trades,
		Metrics:     riskMetrics,
		Warnings:    warnings,
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Str("symbol", s.cfg.Symbol).
		Str("strategy", s.cfg.StrategyID).
		Int("bars", len(bars)).
		Int("trades", len(trades)).
		Float64("total_return", riskMetrics.TotalReturn).
		Msg("backtest complete")

	return result, nil
}

// openPosition sizes and opens a long position at the bar close. Returns
// nil when equity cannot fund a single unit.
func (s *Simulator) openPosition(bars domain.BarSeries, i int, equity float64, seq *int) *position {
	bar := bars[i]

	var (
		unitCost float64
		strike   float64
		expiry   time.Time
	)
	mult := 1.0
	if s.cfg.TradeOptions {
		mult = optionMultiplier
		strike = math.Round(bar.Close)
		expiry = bar.Date.AddDate(0, 0, s.cfg.OptionTenorDays)
		vol := s.engine.EstimateIVFromHistory(bars[:i+1], ivLookbackDays, annualization)
		unitCost = s.engine.Price(domain.OptionParams{
			Spot:         bar.Close,
			Strike:       strike,
			TimeToExpiry: float64(s.cfg.OptionTenorDays) / daysPerYear,
			RiskFreeRate: s.cfg.RiskFreeRate,
			Volatility:   vol,
		}).Call
	} else {
		unitCost = bar.Close
	}

	entryUnit := unitCost * (1 + s.cfg.SlippagePct)
	if entryUnit <= 0 {
		return nil
	}

	qty := math.Floor(equity * s.cfg.PositionSizePct / (entryUnit * mult))
	if qty < 1 {
		return nil
	}
	units := qty * mult

	var legs []domain.TradeLeg
	if s.cfg.TradeOptions {
		legs = []domain.TradeLeg{{
			Type:     domain.LegTypeCall,
			Side:     domain.SideLong,
			Quantity: int(qty),
			Strike:   strike,
			Expiry:   expiry,
		}}
	} else {
		legs = []domain.TradeLeg{{
			Type:     domain.LegTypeStock,
			Side:     domain.SideLong,
			Quantity: int(qty),
		}}
	}

	trade := &domain.Trade{
		TradeID:    idhash.ComputeTradeID(s.cfg.Symbol, s.cfg.StrategyID, bar.Date, *seq),
		Symbol:     s.cfg.Symbol,
		StrategyID: s.cfg.StrategyID,
		Legs:       legs,
		EntryDate:  bar.Date,
		EntryPrice: entryUnit,
		Commission: s.cfg.Commission,
		Status:     domain.TradeStatusOpen,
	}
	*seq++

	return &position{
		trade:     trade,
		units:     units,
		entryUnit: entryUnit,
		entryCost: units * entryUnit,
		entrySpot: bar.Close,
		entryDate: bar.Date,
		strike:    strike,
		expiry:    expiry,
		isOption:  s.cfg.TradeOptions,
	}
}

// closePosition settles the position at the given per-unit mark and
// returns the net cash proceeds.
func (s *Simulator) closePosition(pos *position, markUnit float64, date time.Time, reason string) float64 {
	exitUnit := markUnit * (1 - s.cfg.SlippagePct)
	if exitUnit < 0 {
		exitUnit = 0
	}
	proceeds := pos.units*exitUnit - s.cfg.Commission

	t := pos.trade
	t.ExitDate = date
	t.ExitPrice = exitUnit
	t.ExitReason = reason
	t.Commission += s.cfg.Commission
	if reason == domain.ExitReasonExpiry {
		t.Status = domain.TradeStatusExpired
	} else {
		t.Status = domain.TradeStatusClosed
	}
	t.PnL = proceeds - pos.entryCost - s.cfg.Commission

	return proceeds
}

// markUnit values one unit of the open position at bar i.
//
// Stock positions mark at the close. Option positions at or past expiry
// mark at intrinsic value. Before expiry the mark is either a full engine
// repricing or the exponential time-decay proxy, per configuration.
func (s *Simulator) markUnit(pos *position, bars domain.BarSeries, i int) float64 {
	bar := bars[i]
	if !pos.isOption {
		return bar.Close
	}
	if !bar.Date.Before(pos.expiry) {
		return math.Max(bar.Close-pos.strike, 0)
	}

	if s.cfg.FullRevaluation {
		vol := s.engine.EstimateIVFromHistory(bars[:i+1], ivLookbackDays, annualization)
		return s.engine.Price(domain.OptionParams{
			Spot:         bar.Close,
			Strike:       pos.strike,
			TimeToExpiry: pos.expiry.Sub(bar.Date).Hours() / 24 / daysPerYear,
			RiskFreeRate: s.cfg.RiskFreeRate,
			Volatility:   vol,
		}).Call
	}

	held := bar.Date.Sub(pos.entryDate).Hours() / 24
	mark := pos.entryUnit*math.Exp(-s.cfg.DecayRate*held) + deltaProxy*(bar.Close-pos.entrySpot)
	if mark < 0 {
		mark = 0
	}
	return mark
}
