package pipeline

import (
	"fmt"

	"options-strategy-lab/internal/domain"
)

// Data sufficiency thresholds. Feature construction needs a full
// indicator lookback; regime and model phases need enough history for
// their statistics to mean anything.
const (
	MinBarsForFeatures = 50
	MinBarsForModel    = 200
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks for one symbol.
type SufficiencyResult struct {
	Symbol  string
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// SufficiencyChecker validates a bar series before the pipeline spends
// work on it.
type SufficiencyChecker struct {
	minBarsFeatures int
	minBarsModel    int
}

// NewSufficiencyChecker creates a checker with the standard thresholds.
func NewSufficiencyChecker() *SufficiencyChecker {
	return &SufficiencyChecker{
		minBarsFeatures: MinBarsForFeatures,
		minBarsModel:    MinBarsForModel,
	}
}

// Check runs every sufficiency criterion over the series.
func (c *SufficiencyChecker) Check(symbol string, bars domain.BarSeries) *SufficiencyResult {
	result := &SufficiencyResult{
		Symbol:  symbol,
		Checks:  make([]SufficiencyCheck, 0, 4),
		AllPass: true,
	}

	add := func(check SufficiencyCheck, errs ...string) {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	add(SufficiencyCheck{
		Name:      "Bars for feature construction",
		Threshold: fmt.Sprintf(">= %d", c.minBarsFeatures),
		Actual:    fmt.Sprintf("%d", len(bars)),
		Pass:      len(bars) >= c.minBarsFeatures,
	})

	add(SufficiencyCheck{
		Name:      "Bars for regime and model phases",
		Threshold: fmt.Sprintf(">= %d", c.minBarsModel),
		Actual:    fmt.Sprintf("%d", len(bars)),
		Pass:      len(bars) >= c.minBarsModel,
	})

	chrono := bars.IsChronological()
	chronoErrs := firstChronologyViolations(bars, 3)
	add(SufficiencyCheck{
		Name:      "Chronological order",
		Threshold: "strictly increasing dates",
		Actual:    chronoActual(chrono, len(chronoErrs)),
		Pass:      chrono,
	}, chronoErrs...)

	badPrices := firstPriceViolations(bars, 3)
	add(SufficiencyCheck{
		Name:      "Positive prices",
		Threshold: "all OHLC > 0",
		Actual:    fmt.Sprintf("%d violations", len(badPrices)),
		Pass:      len(badPrices) == 0,
	}, badPrices...)

	return result
}

func chronoActual(pass bool, violations int) string {
	if pass {
		return "ordered"
	}
	return fmt.Sprintf("%d+ violations", violations)
}

// firstChronologyViolations reports up to limit out-of-order adjacent pairs.
func firstChronologyViolations(bars domain.BarSeries, limit int) []string {
	var errs []string
	for i := 1; i < len(bars) && len(errs) < limit; i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			errs = append(errs, fmt.Sprintf("bar %d (%s) not after bar %d (%s)",
				i, bars[i].Date.Format("2006-01-02"), i-1, bars[i-1].Date.Format("2006-01-02")))
		}
	}
	return errs
}

// firstPriceViolations reports up to limit bars with a non-positive price.
func firstPriceViolations(bars domain.BarSeries, limit int) []string {
	var errs []string
	for i, b := range bars {
		if len(errs) >= limit {
			break
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			errs = append(errs, fmt.Sprintf("bar %d (%s) has non-positive price", i, b.Date.Format("2006-01-02")))
		}
	}
	return errs
}
