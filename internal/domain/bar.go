package domain

import "time"

// PriceBar represents one OHLCV bar of historical price data.
// Bars are immutable once fetched and always ordered chronologically ASC.
type PriceBar struct {
	Date   time.Time // bar date (daily resolution)
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// BarSeries is a chronologically ordered sequence of price bars.
type BarSeries []PriceBar

// IsChronological reports whether the series is strictly increasing by date.
func (s BarSeries) IsChronological() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return false
		}
	}
	return true
}

// Closes extracts the close prices in order.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}
