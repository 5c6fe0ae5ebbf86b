// Package pricing implements closed-form option valuation, Greeks, and
// multi-leg spread composition.
package pricing

import (
	"math"

	"options-strategy-lab/internal/domain"
)

// Default values applied on numerical degeneracy.
const (
	DefaultVolatility = 0.20
	MinVolatility     = 0.05
	MaxVolatility     = 2.0
	smileMultiplier   = 1.1 // empirical inflation of realized vol toward implied
)

// Engine prices European options with the Black-Scholes closed form.
// The engine does not validate params: callers must keep spot/strike/vol
// positive whenever TimeToExpiry > 0.
type Engine struct{}

// NewEngine creates a pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Price returns the Black-Scholes call and put values for params.
// At or after expiry it returns intrinsic values.
func (e *Engine) Price(p domain.OptionParams) domain.OptionPrice {
	if p.TimeToExpiry <= 0 {
		return domain.OptionPrice{
			Call: math.Max(p.Spot-p.Strike, 0),
			Put:  math.Max(p.Strike-p.Spot, 0),
		}
	}

	d1, d2 := dValues(p)
	discount := math.Exp(-p.RiskFreeRate * p.TimeToExpiry)
	divDiscount := math.Exp(-p.DividendYield * p.TimeToExpiry)

	call := p.Spot*divDiscount*normCDF(d1) - p.Strike*discount*normCDF(d2)
	put := p.Strike*discount*normCDF(-d2) - p.Spot*divDiscount*normCDF(-d1)

	return domain.OptionPrice{Call: call, Put: put}
}

// Greeks returns the closed-form sensitivities for one option.
// Theta is per calendar day (divided by 365), Vega per 1% vol move,
// Rho per 1% rate move. All Greeks are exactly zero at or after expiry.
func (e *Engine) Greeks(p domain.OptionParams, isCall bool) domain.Greeks {
	if p.TimeToExpiry <= 0 {
		return domain.Greeks{}
	}

	d1, d2 := dValues(p)
	sqrtT := math.Sqrt(p.TimeToExpiry)
	discount := math.Exp(-p.RiskFreeRate * p.TimeToExpiry)
	divDiscount := math.Exp(-p.DividendYield * p.TimeToExpiry)
	pdf := normPDF(d1)

	var delta, theta, rho float64
	if isCall {
		delta = divDiscount * normCDF(d1)
		theta = -p.Spot*divDiscount*pdf*p.Volatility/(2*sqrtT) -
			p.RiskFreeRate*p.Strike*discount*normCDF(d2) +
			p.DividendYield*p.Spot*divDiscount*normCDF(d1)
		rho = p.Strike * p.TimeToExpiry * discount * normCDF(d2)
	} else {
		delta = divDiscount * (normCDF(d1) - 1)
		theta = -p.Spot*divDiscount*pdf*p.Volatility/(2*sqrtT) +
			p.RiskFreeRate*p.Strike*discount*normCDF(-d2) -
			p.DividendYield*p.Spot*divDiscount*normCDF(-d1)
		rho = -p.Strike * p.TimeToExpiry * discount * normCDF(-d2)
	}

	gamma := divDiscount * pdf / (p.Spot * p.Volatility * sqrtT)
	vega := p.Spot * divDiscount * pdf * sqrtT

	return domain.Greeks{
		Delta: delta,
		Gamma: gamma,
		Theta: theta / 365, // per calendar day
		Vega:  vega / 100,  // per 1% vol
		Rho:   rho / 100,   // per 1% rate
	}
}

// PriceVerticalSpread prices a two-leg vertical spread: long one strike,
// short another, same expiry and type. NetPrice is positive for a debit.
func (e *Engine) PriceVerticalSpread(long, short domain.OptionParams, isCall bool) domain.SpreadPrice {
	longPrice := e.Price(long)
	shortPrice := e.Price(short)

	var net float64
	if isCall {
		net = longPrice.Call - shortPrice.Call
	} else {
		net = longPrice.Put - shortPrice.Put
	}

	width := math.Abs(short.Strike - long.Strike)

	var maxProfit, maxLoss, breakeven float64
	if net > 0 {
		// Debit spread: risk the premium, profit capped at width minus debit.
		maxProfit = width - net
		maxLoss = net
	} else {
		// Credit spread: keep the credit, risk width minus credit.
		maxProfit = -net
		maxLoss = width + net
	}

	if isCall {
		breakeven = long.Strike + math.Abs(net)
	} else {
		breakeven = long.Strike - math.Abs(net)
	}

	return domain.SpreadPrice{
		NetPrice:   net,
		MaxProfit:  maxProfit,
		MaxLoss:    maxLoss,
		Breakevens: []float64{breakeven},
		Greeks:     e.Greeks(long, isCall).Sub(e.Greeks(short, isCall)),
	}
}

// IronCondorLegs holds the four strikes of an iron condor, as the two
// vertical credit spreads that compose it.
type IronCondorLegs struct {
	LongPut   domain.OptionParams
	ShortPut  domain.OptionParams
	ShortCall domain.OptionParams
	LongCall  domain.OptionParams
}

// PriceIronCondor composes a put credit spread and a call credit spread.
// NetPrice is negative (a credit); MaxLoss is the wider wing minus the credit.
func (e *Engine) PriceIronCondor(legs IronCondorLegs) domain.SpreadPrice {
	putSpread := e.PriceVerticalSpread(legs.LongPut, legs.ShortPut, false)
	callSpread := e.PriceVerticalSpread(legs.LongCall, legs.ShortCall, true)

	credit := -(putSpread.NetPrice + callSpread.NetPrice)
	putWidth := math.Abs(legs.ShortPut.Strike - legs.LongPut.Strike)
	callWidth := math.Abs(legs.LongCall.Strike - legs.ShortCall.Strike)

	return domain.SpreadPrice{
		NetPrice:  -(credit),
		MaxProfit: credit,
		MaxLoss:   math.Max(putWidth, callWidth) - credit,
		Breakevens: []float64{
			legs.ShortPut.Strike - credit,
			legs.ShortCall.Strike + credit,
		},
		Greeks: putSpread.Greeks.Add(callSpread.Greeks),
	}
}

// EstimateIVFromHistory estimates implied volatility from the log-return
// standard deviation over the lookback window, annualized and inflated by
// the smile multiplier, clamped to [MinVolatility, MaxVolatility].
// Returns DefaultVolatility when history is insufficient.
func (e *Engine) EstimateIVFromHistory(bars domain.BarSeries, lookbackDays int, annualizationFactor float64) float64 {
	if len(bars) < lookbackDays+1 || lookbackDays < 2 {
		return DefaultVolatility
	}

	window := bars[len(bars)-lookbackDays-1:]
	returns := make([]float64, 0, lookbackDays)
	for i := 1; i < len(window); i++ {
		if window[i-1].Close <= 0 || window[i].Close <= 0 {
			continue
		}
		returns = append(returns, math.Log(window[i].Close/window[i-1].Close))
	}
	if len(returns) < 2 {
		return DefaultVolatility
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
	stddev := math.Sqrt(sumSq / float64(len(returns)-1))

	iv := stddev * math.Sqrt(annualizationFactor) * smileMultiplier
	return clamp(iv, MinVolatility, MaxVolatility)
}

// dValues computes the Black-Scholes d1 and d2 terms.
func dValues(p domain.OptionParams) (float64, float64) {
	sqrtT := math.Sqrt(p.TimeToExpiry)
	d1 := (math.Log(p.Spot/p.Strike) +
		(p.RiskFreeRate-p.DividendYield+0.5*p.Volatility*p.Volatility)*p.TimeToExpiry) /
		(p.Volatility * sqrtT)
	return d1, d1 - p.Volatility*sqrtT
}

// normCDF approximates the standard normal CDF with the Abramowitz-Stegun
// rational polynomial (formula 26.2.17, absolute error < 7.5e-8).
func normCDF(x float64) float64 {
	if x < 0 {
		return 1 - normCDF(-x)
	}

	const (
		p  = 0.2316419
		b1 = 0.319381530
		b2 = -0.356563782
		b3 = 1.781477937
		b4 = -1.821255978
		b5 = 1.330274429
	)

	t := 1 / (1 + p*x)
	poly := t * (b1 + t*(b2+t*(b3+t*(b4+t*b5))))
	return 1 - normPDF(x)*poly
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
