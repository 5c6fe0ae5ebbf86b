package pricing

import (
	"math"
	"testing"
	"time"

	"options-strategy-lab/internal/domain"
)

func TestPrice_IntrinsicAtExpiry(t *testing.T) {
	e := NewEngine()

	cases := []struct {
		name         string
		spot, strike float64
		ttx          float64
		wantCall     float64
		wantPut      float64
	}{
		{"itm call at expiry", 110, 100, 0, 10, 0},
		{"itm put at expiry", 90, 100, 0, 0, 10},
		{"atm at expiry", 100, 100, 0, 0, 0},
		{"past expiry", 105, 100, -0.01, 5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := e.Price(domain.OptionParams{
				Spot: tc.spot, Strike: tc.strike, TimeToExpiry: tc.ttx,
				RiskFreeRate: 0.05, Volatility: 0.2,
			})
			if p.Call != tc.wantCall {
				t.Errorf("call = %f, want %f", p.Call, tc.wantCall)
			}
			if p.Put != tc.wantPut {
				t.Errorf("put = %f, want %f", p.Put, tc.wantPut)
			}
		})
	}
}

func TestPrice_ATMQuarterYear(t *testing.T) {
	e := NewEngine()
	p := e.Price(domain.OptionParams{
		Spot: 100, Strike: 100, TimeToExpiry: 0.25,
		RiskFreeRate: 0.05, Volatility: 0.20, DividendYield: 0,
	})

	// Closed-form reference: d1=0.175, d2=0.075.
	if math.Abs(p.Call-4.615) > 0.05 {
		t.Errorf("call = %f, want ~4.615", p.Call)
	}
	if math.Abs(p.Put-3.373) > 0.05 {
		t.Errorf("put = %f, want ~3.373", p.Put)
	}
}

func TestPrice_PutCallParity(t *testing.T) {
	e := NewEngine()

	cases := []domain.OptionParams{
		{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Volatility: 0.20},
		{Spot: 120, Strike: 100, TimeToExpiry: 1.0, RiskFreeRate: 0.03, Volatility: 0.35},
		{Spot: 80, Strike: 100, TimeToExpiry: 0.5, RiskFreeRate: 0.01, Volatility: 0.15, DividendYield: 0.02},
		{Spot: 50, Strike: 55, TimeToExpiry: 0.1, RiskFreeRate: 0.07, Volatility: 0.60, DividendYield: 0.01},
	}

	for _, params := range cases {
		p := e.Price(params)
		lhs := p.Call - p.Put
		rhs := params.Spot*math.Exp(-params.DividendYield*params.TimeToExpiry) -
			params.Strike*math.Exp(-params.RiskFreeRate*params.TimeToExpiry)
		if math.Abs(lhs-rhs) > 1e-4*math.Max(1, math.Abs(rhs)) {
			t.Errorf("parity violated for %+v: call-put=%f, want %f", params, lhs, rhs)
		}
	}
}

func TestPrice_NonNegative(t *testing.T) {
	e := NewEngine()
	params := domain.OptionParams{
		Spot: 100, Strike: 150, TimeToExpiry: 0.05,
		RiskFreeRate: 0.05, Volatility: 0.10,
	}
	p := e.Price(params)
	if p.Call < 0 || p.Put < 0 {
		t.Errorf("negative option price: %+v", p)
	}
}

func TestGreeks_ZeroAtExpiry(t *testing.T) {
	e := NewEngine()
	g := e.Greeks(domain.OptionParams{Spot: 100, Strike: 100, TimeToExpiry: 0}, true)
	if g != (domain.Greeks{}) {
		t.Errorf("expected zero Greeks at expiry, got %+v", g)
	}
}

func TestGreeks_FiniteAndSigned(t *testing.T) {
	e := NewEngine()
	params := domain.OptionParams{
		Spot: 100, Strike: 105, TimeToExpiry: 0.25,
		RiskFreeRate: 0.05, Volatility: 0.25, DividendYield: 0.01,
	}

	for _, isCall := range []bool{true, false} {
		g := e.Greeks(params, isCall)
		for name, v := range map[string]float64{
			"delta": g.Delta, "gamma": g.Gamma, "theta": g.Theta,
			"vega": g.Vega, "rho": g.Rho,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("isCall=%t: %s is not finite: %f", isCall, name, v)
			}
		}
		if g.Gamma < 0 {
			t.Errorf("isCall=%t: gamma = %f, want >= 0", isCall, g.Gamma)
		}
		if g.Vega < 0 {
			t.Errorf("isCall=%t: vega = %f, want >= 0", isCall, g.Vega)
		}
	}

	call := e.Greeks(params, true)
	put := e.Greeks(params, false)
	if call.Delta < 0 || call.Delta > 1 {
		t.Errorf("call delta = %f, want in [0,1]", call.Delta)
	}
	if put.Delta > 0 || put.Delta < -1 {
		t.Errorf("put delta = %f, want in [-1,0]", put.Delta)
	}
}

func TestPriceVerticalSpread_DebitCall(t *testing.T) {
	e := NewEngine()
	long := domain.OptionParams{
		Spot: 100, Strike: 95, TimeToExpiry: 0.25,
		RiskFreeRate: 0.05, Volatility: 0.30,
	}
	short := long
	short.Strike = 105

	sp := e.PriceVerticalSpread(long, short, true)

	if sp.NetPrice <= 0 {
		t.Fatalf("expected debit (positive net price), got %f", sp.NetPrice)
	}
	// Width 10: profit and loss must sum to the strike width.
	if math.Abs(sp.MaxProfit+sp.MaxLoss-10) > 1e-9 {
		t.Errorf("maxProfit(%f) + maxLoss(%f) != width 10", sp.MaxProfit, sp.MaxLoss)
	}
	if len(sp.Breakevens) != 1 {
		t.Fatalf("expected 1 breakeven, got %d", len(sp.Breakevens))
	}
	wantBE := long.Strike + sp.NetPrice
	if math.Abs(sp.Breakevens[0]-wantBE) > 1e-9 {
		t.Errorf("breakeven = %f, want %f", sp.Breakevens[0], wantBE)
	}
}

func TestPriceVerticalSpread_FourDollarDebit(t *testing.T) {
	// A 10-point-wide debit spread bought for ~4.00 has maxProfit ~6, maxLoss ~4.
	e := NewEngine()
	long := domain.OptionParams{
		Spot: 100, Strike: 94, TimeToExpiry: 0.4,
		RiskFreeRate: 0.05, Volatility: 0.28,
	}
	short := long
	short.Strike = 104

	sp := e.PriceVerticalSpread(long, short, true)
	if sp.MaxProfit != 10-sp.NetPrice {
		t.Errorf("maxProfit = %f, want width - debit = %f", sp.MaxProfit, 10-sp.NetPrice)
	}
	if sp.MaxLoss != sp.NetPrice {
		t.Errorf("maxLoss = %f, want debit %f", sp.MaxLoss, sp.NetPrice)
	}
}

func TestPriceIronCondor(t *testing.T) {
	e := NewEngine()
	base := domain.OptionParams{
		Spot: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Volatility: 0.25,
	}
	legs := IronCondorLegs{
		LongPut:   withStrike(base, 85),
		ShortPut:  withStrike(base, 90),
		ShortCall: withStrike(base, 110),
		LongCall:  withStrike(base, 115),
	}

	sp := e.PriceIronCondor(legs)

	if sp.NetPrice >= 0 {
		t.Errorf("iron condor should be a credit, net price = %f", sp.NetPrice)
	}
	credit := sp.MaxProfit
	if credit <= 0 {
		t.Fatalf("credit = %f, want > 0", credit)
	}
	if math.Abs(sp.MaxLoss-(5-credit)) > 1e-9 {
		t.Errorf("maxLoss = %f, want wing width 5 - credit %f", sp.MaxLoss, credit)
	}
	if len(sp.Breakevens) != 2 {
		t.Fatalf("expected 2 breakevens, got %d", len(sp.Breakevens))
	}
	if sp.Breakevens[0] != 90-credit || sp.Breakevens[1] != 110+credit {
		t.Errorf("breakevens = %v, want [%f %f]", sp.Breakevens, 90-credit, 110+credit)
	}
}

func TestEstimateIVFromHistory(t *testing.T) {
	e := NewEngine()

	t.Run("insufficient history returns default", func(t *testing.T) {
		bars := makeBars([]float64{100, 101, 102})
		if iv := e.EstimateIVFromHistory(bars, 20, 252); iv != DefaultVolatility {
			t.Errorf("iv = %f, want default %f", iv, DefaultVolatility)
		}
	})

	t.Run("flat series clamps to floor", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100
		}
		if iv := e.EstimateIVFromHistory(makeBars(closes), 20, 252); iv != MinVolatility {
			t.Errorf("iv = %f, want floor %f", iv, MinVolatility)
		}
	})

	t.Run("volatile series stays in bounds", func(t *testing.T) {
		closes := make([]float64, 60)
		price := 100.0
		for i := range closes {
			if i%2 == 0 {
				price *= 1.08
			} else {
				price *= 0.93
			}
			closes[i] = price
		}
		iv := e.EstimateIVFromHistory(makeBars(closes), 20, 252)
		if iv < MinVolatility || iv > MaxVolatility {
			t.Errorf("iv = %f, want within [%f, %f]", iv, MinVolatility, MaxVolatility)
		}
	})
}

func TestNormCDF_Accuracy(t *testing.T) {
	// Reference values from standard normal tables.
	cases := []struct{ x, want float64 }{
		{0, 0.5},
		{1, 0.8413447},
		{-1, 0.1586553},
		{1.96, 0.9750021},
		{-2.5758293, 0.005},
		{3, 0.9986501},
	}
	for _, tc := range cases {
		if got := normCDF(tc.x); math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("normCDF(%f) = %.8f, want %.8f", tc.x, got, tc.want)
		}
	}
}

func withStrike(p domain.OptionParams, k float64) domain.OptionParams {
	p.Strike = k
	return p
}

func makeBars(closes []float64) domain.BarSeries {
	bars := make(domain.BarSeries, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = domain.PriceBar{
			Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1e6,
		}
	}
	return bars
}
