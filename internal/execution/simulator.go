package execution

import (
	"errors"
	"math"
	"math/rand"

	"options-strategy-lab/internal/domain"
)

// Execution constants.
const (
	// MinTick floors every fill price.
	MinTick = 0.01

	// OptionMultiplier converts option contract quantity to share notional.
	OptionMultiplier = 100.0
)

// Execution errors.
var (
	ErrEmptyOrder      = errors.New("execution: order has no legs")
	ErrInvalidQuantity = errors.New("execution: leg quantity must be positive")
)

// Simulator turns theoretical orders into realistic fills by applying a
// slippage model, commission schedule, and per-notional fees.
//
// All randomness comes from the injected generator so that identical seeds
// reproduce identical fills.
type Simulator struct {
	cfg domain.ExecutionConfig
	rng *rand.Rand
}

// NewSimulator creates a Simulator for the given cost scenario.
func NewSimulator(cfg domain.ExecutionConfig, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, rng: rng}
}

// Execute fills an order leg by leg and aggregates the results.
// Multi-leg orders report a notional-weighted average fill price.
func (s *Simulator) Execute(order domain.Order) (*domain.ExecutionSummary, error) {
	if len(order.Legs) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, leg := range order.Legs {
		if leg.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	summary := &domain.ExecutionSummary{
		Fills: make([]domain.Fill, 0, len(order.Legs)),
	}

	var weightedPrice, totalNotional float64
	for _, leg := range order.Legs {
		fill := s.fillLeg(leg)
		summary.Fills = append(summary.Fills, fill)

		units := float64(fill.Quantity) * multiplier(fill.Instrument)
		weightedPrice += fill.FillPrice * units
		totalNotional += units

		summary.TotalCommission += fill.Commission
		summary.TotalFees += fill.Fees
		summary.TotalSlippage += fill.Slippage * units
	}

	if totalNotional > 0 {
		summary.AvgFillPrice = weightedPrice / totalNotional
	}
	return summary, nil
}

// fillLeg computes the fill for a single leg.
func (s *Simulator) fillLeg(leg domain.OrderLeg) domain.Fill {
	mid := leg.Quote.Mid()
	units := float64(leg.Quantity) * multiplier(leg.Instrument)
	notional := mid * units

	var fillPrice, slippage float64
	if !s.cfg.SlippageEnabled {
		// Fill at the far touch: ask for buys, bid for sells.
		if leg.Side == domain.OrderBuy {
			fillPrice = leg.Quote.Ask
		} else {
			fillPrice = leg.Quote.Bid
		}
	} else {
		spreadImpact := leg.Quote.Spread() * s.cfg.SpreadFactor
		marketImpact := math.Min(notional*s.cfg.ImpactFactor, mid*s.cfg.MaxSlippagePct)
		volImpact := mid * s.cfg.VolFactor * s.rng.Float64()

		slippage = spreadImpact + marketImpact + volImpact
		if floor := mid * s.cfg.MinSlippagePct; slippage < floor {
			slippage = floor
		}

		if leg.Side == domain.OrderBuy {
			fillPrice = mid + slippage
		} else {
			fillPrice = mid - slippage
		}
	}

	if fillPrice < MinTick {
		fillPrice = MinTick
	}

	return domain.Fill{
		Instrument: leg.Instrument,
		Side:       leg.Side,
		Quantity:   leg.Quantity,
		FillPrice:  fillPrice,
		Slippage:   slippage,
		Commission: s.commission(leg),
		Fees:       notional * (s.cfg.RegulatoryFeeRate + s.cfg.ExchangeFeeRate + s.cfg.ClearingFeeRate),
	}
}

// commission applies the per-unit rate for the instrument, floored at the
// scenario minimum.
func (s *Simulator) commission(leg domain.OrderLeg) float64 {
	var rate float64
	switch leg.Instrument {
	case domain.InstrumentOption:
		rate = s.cfg.OptionCommissionPerContract
	default:
		rate = s.cfg.StockCommissionPerShare
	}

	c := float64(leg.Quantity) * rate
	if c < s.cfg.MinCommission {
		c = s.cfg.MinCommission
	}
	return c
}

func multiplier(inst domain.Instrument) float64 {
	if inst == domain.InstrumentOption {
		return OptionMultiplier
	}
	return 1.0
}
