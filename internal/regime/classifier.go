// Package regime classifies current market behavior with a priority-ordered
// rule cascade over indicator values. The first matching rule wins.
package regime

import (
	"fmt"
	"math"

	"options-strategy-lab/internal/domain"
	"options-strategy-lab/internal/features"
)

// Classifier thresholds.
const (
	eventVolIndexLevel = 30.0 // VIX-like level that forces EVENT_RISK
	eventIVRankLevel   = 80.0

	strongTrendSMA50Pct  = 0.02
	strongTrendSMA200Pct = 0.05
	strongTrendADX       = 25.0
	bullRSILevel         = 55.0
	bearRSILevel         = 45.0

	sidewaysADX       = 20.0
	sidewaysSMA50Band = 0.03
	lowVolRealized    = 0.15
	lowVolIndexLevel  = 20.0
	lowVolBBWidth     = 0.05

	adxWindow     = 50
	slopeLookback = 10
)

// Classifier runs the regime rule cascade.
type Classifier struct{}

// NewClassifier creates a regime classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify evaluates the rule cascade at the last bar of the series.
// Requires at least features.ModelLookback bars; shorter series return
// features.ErrInsufficientData.
//
// Rule priority: event risk → strong trend → sideways → weak-trend fallback.
func (c *Classifier) Classify(bars domain.BarSeries, iv domain.IVMetrics, volIndex float64) (domain.RegimeClassification, error) {
	if len(bars) < features.ModelLookback {
		return domain.RegimeClassification{}, fmt.Errorf(
			"%w: have %d bars, need %d", features.ErrInsufficientData, len(bars), features.ModelLookback)
	}

	i := len(bars) - 1
	closes := bars.Closes()
	price := closes[i]

	// 1. Event risk dominates everything.
	if volIndex > eventVolIndexLevel || iv.IVRank > eventIVRankLevel {
		return domain.RegimeClassification{
			Regime:     domain.RegimeEventRisk,
			Confidence: 0.9,
			Rationale: []string{
				fmt.Sprintf("volatility index %.1f (threshold %.0f)", volIndex, eventVolIndexLevel),
				fmt.Sprintf("IV rank %.1f (threshold %.0f)", iv.IVRank, eventIVRankLevel),
			},
		}, nil
	}

	sma50 := features.SMA(closes, i, 50)
	sma200 := features.SMA(closes, i, 200)
	sma50Slope := sma50 - features.SMA(closes, i-slopeLookback, 50)
	sma200Slope := sma200 - features.SMA(closes, i-slopeLookback, 200)
	adx := features.TrendStrength(bars, i, adxWindow)
	rsi := features.RSI(closes, i, 14)
	vs50 := price/sma50 - 1
	vs200 := price/sma200 - 1

	// 2. Strong trend: price clear of both SMAs, slopes agreeing, ADX and
	// RSI confirming.
	if vs50 > strongTrendSMA50Pct && vs200 > strongTrendSMA200Pct &&
		sma50Slope > 0 && sma200Slope > 0 &&
		adx > strongTrendADX && rsi > bullRSILevel {
		return domain.RegimeClassification{
			Regime:     domain.RegimeBullTrend,
			Confidence: trendConfidence(adx),
			Rationale: []string{
				fmt.Sprintf("price %.1f%% above SMA50, %.1f%% above SMA200", vs50*100, vs200*100),
				fmt.Sprintf("trend strength %.1f (threshold %.0f)", adx, strongTrendADX),
				fmt.Sprintf("RSI %.1f confirms (threshold %.0f)", rsi, bullRSILevel),
			},
		}, nil
	}
	if vs50 < -strongTrendSMA50Pct && vs200 < -strongTrendSMA200Pct &&
		sma50Slope < 0 && sma200Slope < 0 &&
		adx > strongTrendADX && rsi < bearRSILevel {
		return domain.RegimeClassification{
			Regime:     domain.RegimeBearTrend,
			Confidence: trendConfidence(adx),
			Rationale: []string{
				fmt.Sprintf("price %.1f%% below SMA50, %.1f%% below SMA200", -vs50*100, -vs200*100),
				fmt.Sprintf("trend strength %.1f (threshold %.0f)", adx, strongTrendADX),
				fmt.Sprintf("RSI %.1f confirms (threshold %.0f)", rsi, bearRSILevel),
			},
		}, nil
	}

	// 3. Sideways: weak trend strength and price hugging SMA50.
	if adx < sidewaysADX && math.Abs(vs50) < sidewaysSMA50Band {
		rvol := features.RealizedVol(closes, i, 20)
		_, bbWidth := features.Bollinger(closes, i)

		if rvol < lowVolRealized && volIndex < lowVolIndexLevel && bbWidth < lowVolBBWidth {
			return domain.RegimeClassification{
				Regime:     domain.RegimeSidewaysLowVol,
				Confidence: 0.8,
				Rationale: []string{
					fmt.Sprintf("trend strength %.1f below %.0f, price within %.1f%% of SMA50", adx, sidewaysADX, math.Abs(vs50)*100),
					fmt.Sprintf("realized vol %.1f%%, vol index %.1f, band width %.1f%%", rvol*100, volIndex, bbWidth*100),
				},
			}, nil
		}
		return domain.RegimeClassification{
			Regime:     domain.RegimeSidewaysHighVol,
			Confidence: 0.7,
			Rationale: []string{
				fmt.Sprintf("trend strength %.1f below %.0f, price within %.1f%% of SMA50", adx, sidewaysADX, math.Abs(vs50)*100),
				fmt.Sprintf("realized vol %.1f%% or vol index %.1f elevated", rvol*100, volIndex),
			},
		}, nil
	}

	// 4. Fallback: weak trend from price vs SMA50 and its slope.
	switch {
	case price > sma50 && sma50Slope > 0:
		return domain.RegimeClassification{
			Regime:     domain.RegimeBullTrend,
			Confidence: 0.5,
			Rationale: []string{
				fmt.Sprintf("price %.1f%% above rising SMA50", vs50*100),
				"weak trend: no strong-rule confirmation",
			},
		}, nil
	case price < sma50 && sma50Slope < 0:
		return domain.RegimeClassification{
			Regime:     domain.RegimeBearTrend,
			Confidence: 0.5,
			Rationale: []string{
				fmt.Sprintf("price %.1f%% below falling SMA50", -vs50*100),
				"weak trend: no strong-rule confirmation",
			},
		}, nil
	default:
		return domain.RegimeClassification{
			Regime:     domain.RegimeSidewaysHighVol,
			Confidence: 0.5,
			Rationale: []string{
				"price and SMA50 slope disagree",
				fmt.Sprintf("trend strength %.1f inconclusive", adx),
			},
		}, nil
	}
}

// trendConfidence scales linearly with ADX excess above the strong-trend
// threshold, capped at 0.9.
func trendConfidence(adx float64) float64 {
	conf := 0.5 + (adx-strongTrendADX)/100
	if conf > 0.9 {
		conf = 0.9
	}
	return conf
}
