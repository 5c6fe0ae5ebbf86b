package features

import (
	"math"

	"options-strategy-lab/internal/domain"
)

// SMA returns the simple moving average of the last period values ending at
// index i (inclusive). Returns NaN when there is not enough history.
func SMA(values []float64, i, period int) float64 {
	if period <= 0 || i+1 < period || i >= len(values) {
		return math.NaN()
	}
	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += values[j]
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average at index i, seeded with the
// SMA of the first period values and iterated forward.
func EMA(values []float64, i, period int) float64 {
	if period <= 0 || i+1 < period || i >= len(values) {
		return math.NaN()
	}
	k := 2.0 / float64(period+1)
	ema := SMA(values, period-1, period)
	for j := period; j <= i; j++ {
		ema = values[j]*k + ema*(1-k)
	}
	return ema
}

// RSI returns the Wilder-smoothed relative strength index at index i.
// Returns 100 when there are no losses in the window.
func RSI(closes []float64, i, period int) float64 {
	if period <= 0 || i < period || i >= len(closes) {
		return math.NaN()
	}

	avgGain, avgLoss := 0.0, 0.0
	for j := 1; j <= period; j++ {
		d := closes[j] - closes[j-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for j := period + 1; j <= i; j++ {
		d := closes[j] - closes[j-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, signal line, and histogram at index i using
// the standard 12/26/9 periods.
func MACD(closes []float64, i int) (line, signal, histogram float64) {
	const (
		fast       = 12
		slow       = 26
		signalSpan = 9
	)
	if i+1 < slow+signalSpan || i >= len(closes) {
		return math.NaN(), math.NaN(), math.NaN()
	}

	// Materialize the MACD series from the first index it is defined,
	// then EMA it for the signal line.
	macd := make([]float64, 0, i-slow+2)
	for j := slow - 1; j <= i; j++ {
		macd = append(macd, EMA(closes, j, fast)-EMA(closes, j, slow))
	}
	line = macd[len(macd)-1]
	signal = EMA(macd, len(macd)-1, signalSpan)
	return line, signal, line - signal
}

// ATR returns the Wilder-smoothed average true range at index i.
func ATR(bars domain.BarSeries, i, period int) float64 {
	if period <= 0 || i < period || i >= len(bars) {
		return math.NaN()
	}

	trueRange := func(j int) float64 {
		hl := bars[j].High - bars[j].Low
		hc := math.Abs(bars[j].High - bars[j-1].Close)
		lc := math.Abs(bars[j].Low - bars[j-1].Close)
		return math.Max(hl, math.Max(hc, lc))
	}

	atr := 0.0
	for j := 1; j <= period; j++ {
		atr += trueRange(j)
	}
	atr /= float64(period)

	for j := period + 1; j <= i; j++ {
		atr = (atr*float64(period-1) + trueRange(j)) / float64(period)
	}
	return atr
}

// Bollinger returns the band position ((close-lower)/(upper-lower)) and
// relative width ((upper-lower)/middle) at index i with a 20-period,
// 2-sigma band.
func Bollinger(closes []float64, i int) (position, width float64) {
	const period = 20
	mid := SMA(closes, i, period)
	if math.IsNaN(mid) {
		return math.NaN(), math.NaN()
	}

	sumSq := 0.0
	for j := i - period + 1; j <= i; j++ {
		d := closes[j] - mid
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(period))

	upper := mid + 2*sd
	lower := mid - 2*sd
	if upper == lower {
		return 0.5, 0
	}
	return (closes[i] - lower) / (upper - lower), (upper - lower) / mid
}

// RealizedVol returns the annualized standard deviation of log returns over
// the window of the given number of days ending at index i.
func RealizedVol(closes []float64, i, days int) float64 {
	if days < 2 || i < days || i >= len(closes) {
		return math.NaN()
	}

	returns := make([]float64, 0, days)
	for j := i - days + 1; j <= i; j++ {
		if closes[j-1] <= 0 || closes[j] <= 0 {
			return math.NaN()
		}
		returns = append(returns, math.Log(closes[j]/closes[j-1]))
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSq := 0.0
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(len(returns)-1)) * math.Sqrt(252)
}

// TrendStrength returns an ADX-like directional movement index over the
// last window bars ending at index i, on the 0-100 scale. It uses a
// simplified single-pass formula: directional movement and true range are
// summed over the window rather than Wilder-smoothed.
func TrendStrength(bars domain.BarSeries, i, window int) float64 {
	if window <= 1 || i < window || i >= len(bars) {
		return math.NaN()
	}

	plusDM, minusDM, trSum := 0.0, 0.0, 0.0
	for j := i - window + 1; j <= i; j++ {
		up := bars[j].High - bars[j-1].High
		down := bars[j-1].Low - bars[j].Low
		if up > down && up > 0 {
			plusDM += up
		}
		if down > up && down > 0 {
			minusDM += down
		}

		hl := bars[j].High - bars[j].Low
		hc := math.Abs(bars[j].High - bars[j-1].Close)
		lc := math.Abs(bars[j].Low - bars[j-1].Close)
		trSum += math.Max(hl, math.Max(hc, lc))
	}

	if trSum == 0 {
		return 0
	}
	plusDI := 100 * plusDM / trSum
	minusDI := 100 * minusDM / trSum
	if plusDI+minusDI == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}
