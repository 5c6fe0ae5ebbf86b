package lookup

import (
	"errors"
	"time"

	"options-strategy-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoBarData = errors.New("no bar data available")
)

// BarAt returns the bar at or before the target date.
// If no bar exists before target, returns the first available bar.
// Returns ErrNoBarData if the series is empty.
func BarAt(target time.Time, bars domain.BarSeries) (domain.PriceBar, error) {
	if len(bars) == 0 {
		return domain.PriceBar{}, ErrNoBarData
	}

	// Find closest bar at or before target
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(target) {
			return bars[i], nil
		}
	}

	// If no bar before target, use first available
	return bars[0], nil
}

// CloseAt returns the close price at or before the target date.
// Same lookup semantics as BarAt.
func CloseAt(target time.Time, bars domain.BarSeries) (float64, error) {
	bar, err := BarAt(target, bars)
	if err != nil {
		return 0, err
	}
	return bar.Close, nil
}

// IndexAtOrBefore returns the index of the bar at or before target, or -1
// when every bar is after target. Returns ErrNoBarData if the series is empty.
func IndexAtOrBefore(target time.Time, bars domain.BarSeries) (int, error) {
	if len(bars) == 0 {
		return -1, ErrNoBarData
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(target) {
			return i, nil
		}
	}
	return -1, nil
}
