package backtest

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration rejection.
var ErrInvalidConfig = errors.New("invalid backtest config")

// Default configuration values.
const (
	DefaultInitialCapital  = 100_000.0
	DefaultRiskFreeRate    = 0.04
	DefaultSlippagePct     = 0.001
	DefaultCommission      = 1.0
	DefaultPositionSizePct = 0.95
	DefaultOptionTenorDays = 30
	DefaultDecayRate       = 0.01 // per-day premium decay in the proxy mark
)

// Config parameterizes one backtest run.
type Config struct {
	Symbol     string
	StrategyID string

	InitialCapital float64
	RiskFreeRate   float64

	// SlippagePct is the fixed fraction added to entry prices and
	// subtracted from exit prices.
	SlippagePct float64

	// Commission is charged per settle (entry and exit each).
	Commission float64

	// PositionSizePct caps each position at this fraction of equity.
	PositionSizePct float64

	// TradeOptions switches the position model from shares of the
	// underlying to ATM call contracts priced by the engine.
	TradeOptions    bool
	OptionTenorDays int

	// DecayRate drives the exponential time-decay proxy used to mark open
	// option positions. FullRevaluation replaces the proxy with per-bar
	// engine repricing.
	DecayRate       float64
	FullRevaluation bool

	// StartDate/EndDate bound the run when set. Zero values mean the bar
	// series defines the window.
	StartDate time.Time
	EndDate   time.Time

	Seed int64
}

// DefaultConfig returns a Config with standard parameters.
func DefaultConfig(symbol, strategyID string) Config {
	return Config{
		Symbol:          symbol,
		StrategyID:      strategyID,
		InitialCapital:  DefaultInitialCapital,
		RiskFreeRate:    DefaultRiskFreeRate,
		SlippagePct:     DefaultSlippagePct,
		Commission:      DefaultCommission,
		PositionSizePct: DefaultPositionSizePct,
		OptionTenorDays: DefaultOptionTenorDays,
		DecayRate:       DefaultDecayRate,
	}
}

// Validate rejects structurally invalid configuration before any
// simulation work starts.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidConfig, c.InitialCapital)
	}
	if c.SlippagePct < 0 || c.SlippagePct >= 1 {
		return fmt.Errorf("%w: slippage pct must be in [0,1), got %v", ErrInvalidConfig, c.SlippagePct)
	}
	if c.Commission < 0 {
		return fmt.Errorf("%w: commission must not be negative, got %v", ErrInvalidConfig, c.Commission)
	}
	if c.PositionSizePct <= 0 || c.PositionSizePct > 1 {
		return fmt.Errorf("%w: position size pct must be in (0,1], got %v", ErrInvalidConfig, c.PositionSizePct)
	}
	if c.TradeOptions && c.OptionTenorDays <= 0 {
		return fmt.Errorf("%w: option tenor must be positive, got %d", ErrInvalidConfig, c.OptionTenorDays)
	}
	if c.DecayRate < 0 {
		return fmt.Errorf("%w: decay rate must not be negative, got %v", ErrInvalidConfig, c.DecayRate)
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrInvalidConfig,
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	return nil
}
