package domain

// Instrument identifies what an order leg trades.
type Instrument string

// Instrument constants.
const (
	InstrumentStock  Instrument = "STOCK"
	InstrumentOption Instrument = "OPTION"
)

// OrderSide identifies buy or sell.
type OrderSide string

// Order side constants.
const (
	OrderBuy  OrderSide = "BUY"
	OrderSell OrderSide = "SELL"
)

// Quote is a bid/ask pair for one instrument.
type Quote struct {
	Bid float64
	Ask float64
}

// Mid returns the quote midpoint.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// Spread returns the bid-ask spread width.
func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// OrderLeg is one leg of an order request.
type OrderLeg struct {
	Instrument Instrument
	Side       OrderSide
	Quantity   int
	Quote      Quote
}

// Order is a single- or multi-leg order request.
type Order struct {
	Symbol string
	Legs   []OrderLeg
}

// Fill is the simulated execution of one order leg.
// Fills are append-only once emitted.
type Fill struct {
	Instrument Instrument
	Side       OrderSide
	Quantity   int
	FillPrice  float64
	Slippage   float64 // per-unit slippage applied, >= 0
	Commission float64
	Fees       float64
}

// ExecutionSummary aggregates the fills of one order.
type ExecutionSummary struct {
	Fills           []Fill
	AvgFillPrice    float64 // notional-weighted across legs
	TotalCommission float64
	TotalFees       float64
	TotalSlippage   float64
}
