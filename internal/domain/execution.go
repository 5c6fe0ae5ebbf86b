package domain

// ExecutionConfig holds the execution-cost model parameters.
type ExecutionConfig struct {
	ScenarioID string

	SlippageEnabled bool
	SpreadFactor    float64 // share of bid-ask spread paid, [0,1]
	ImpactFactor    float64 // market impact per unit notional
	VolFactor       float64 // volatility jitter scale on mid
	MinSlippagePct  float64 // slippage floor as fraction of mid
	MaxSlippagePct  float64 // market impact cap as fraction of mid

	StockCommissionPerShare   float64
	OptionCommissionPerContract float64
	MinCommission             float64

	RegulatoryFeeRate float64 // per unit notional
	ExchangeFeeRate   float64
	ClearingFeeRate   float64
}

// Scenario ID constants.
const (
	ScenarioOptimistic  = "optimistic"
	ScenarioRealistic   = "realistic"
	ScenarioPessimistic = "pessimistic"
)

// Predefined execution scenarios.
var (
	ExecutionConfigOptimistic = ExecutionConfig{
		ScenarioID:                  ScenarioOptimistic,
		SlippageEnabled:             false,
		StockCommissionPerShare:     0.005,
		OptionCommissionPerContract: 0.65,
		MinCommission:               1.0,
		RegulatoryFeeRate:           0.0000229,
		ExchangeFeeRate:             0.00003,
		ClearingFeeRate:             0.00002,
	}

	ExecutionConfigRealistic = ExecutionConfig{
		ScenarioID:                  ScenarioRealistic,
		SlippageEnabled:             true,
		SpreadFactor:                0.5,
		ImpactFactor:                0.000001,
		VolFactor:                   0.0005,
		MinSlippagePct:              0.0001,
		MaxSlippagePct:              0.005,
		StockCommissionPerShare:     0.005,
		OptionCommissionPerContract: 0.65,
		MinCommission:               1.0,
		RegulatoryFeeRate:           0.0000229,
		ExchangeFeeRate:             0.00003,
		ClearingFeeRate:             0.00002,
	}

	ExecutionConfigPessimistic = ExecutionConfig{
		ScenarioID:                  ScenarioPessimistic,
		SlippageEnabled:             true,
		SpreadFactor:                1.0,
		ImpactFactor:                0.000005,
		VolFactor:                   0.002,
		MinSlippagePct:              0.0005,
		MaxSlippagePct:              0.01,
		StockCommissionPerShare:     0.01,
		OptionCommissionPerContract: 1.0,
		MinCommission:               2.0,
		RegulatoryFeeRate:           0.0000229,
		ExchangeFeeRate:             0.00005,
		ClearingFeeRate:             0.00003,
	}
)
