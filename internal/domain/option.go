package domain

// OptionParams holds the inputs for a single closed-form option valuation.
// Immutable value, constructed per valuation call. The pricing engine does
// not validate these: callers must ensure spot/strike/vol are positive
// whenever TimeToExpiry > 0.
type OptionParams struct {
	Spot          float64 // underlying price
	Strike        float64
	TimeToExpiry  float64 // years, >= 0
	RiskFreeRate  float64 // annualized, e.g. 0.05
	Volatility    float64 // annualized, > 0 except at expiry
	DividendYield float64 // annualized continuous yield
}

// OptionPrice holds call and put values for one set of params.
type OptionPrice struct {
	Call float64
	Put  float64
}

// Greeks holds option price sensitivities.
// Theta is expressed per calendar day, Vega per 1% volatility move,
// Rho per 1% rate move. All Greeks are exactly zero at or after expiry.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// Sub returns g - o component-wise. Used to aggregate spread Greeks.
func (g Greeks) Sub(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta - o.Delta,
		Gamma: g.Gamma - o.Gamma,
		Theta: g.Theta - o.Theta,
		Vega:  g.Vega - o.Vega,
		Rho:   g.Rho - o.Rho,
	}
}

// Add returns g + o component-wise.
func (g Greeks) Add(o Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta,
		Gamma: g.Gamma + o.Gamma,
		Theta: g.Theta + o.Theta,
		Vega:  g.Vega + o.Vega,
		Rho:   g.Rho + o.Rho,
	}
}

// SpreadPrice describes a priced multi-leg option position.
// Value-only: it keeps no reference to the leg params after construction.
// NetPrice is positive for a debit and negative for a credit.
type SpreadPrice struct {
	NetPrice   float64
	MaxProfit  float64
	MaxLoss    float64
	Breakevens []float64
	Greeks     Greeks
}
