package strategy

import (
	"errors"
	"fmt"

	"options-strategy-lab/internal/domain"
)

// Input errors.
var (
	ErrEmptyInput     = errors.New("strategy: input has no bars")
	ErrMisalignedData = errors.New("strategy: series not aligned with bars")
)

// Strategy turns aligned market data into a signal stream for the
// backtest. The returned slice has one Signal per input bar.
type Strategy interface {
	Signals(input *Input) ([]domain.Signal, error)

	// ID returns the strategy identifier including parameters.
	ID() string
}

// Input holds the per-bar series a strategy may consume. Probabilities
// and Regimes are optional; when present they must be aligned
// index-for-index with Bars.
type Input struct {
	Bars          domain.BarSeries
	Probabilities []float64
	Regimes       []domain.RegimeClassification
}

// Validate checks bar presence and series alignment.
func (in *Input) Validate() error {
	if in == nil || len(in.Bars) == 0 {
		return ErrEmptyInput
	}
	if in.Probabilities != nil && len(in.Probabilities) != len(in.Bars) {
		return fmt.Errorf("%w: %d probabilities for %d bars", ErrMisalignedData, len(in.Probabilities), len(in.Bars))
	}
	if in.Regimes != nil && len(in.Regimes) != len(in.Bars) {
		return fmt.Errorf("%w: %d regimes for %d bars", ErrMisalignedData, len(in.Regimes), len(in.Bars))
	}
	return nil
}
