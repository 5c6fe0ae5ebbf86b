// Package verification confirms backtest determinism: the same bars,
// configuration, and seed must reproduce a run exactly. Comparisons are
// exact, not tolerance-based, because the simulator is required to be
// bit-for-bit reproducible.
package verification

import (
	"fmt"

	"options-strategy-lab/internal/domain"
)

// FieldDivergence represents a mismatch between two runs.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // first-run value
	Actual   interface{} // second-run value
}

// VerificationResult contains the outcome of verifying one run.
type VerificationResult struct {
	RunID       string
	Match       bool
	Divergences []FieldDivergence
}

// CompareResults compares two backtest results field by field and
// returns every divergence found.
func CompareResults(a, b *domain.BacktestResult) []FieldDivergence {
	var divergences []FieldDivergence

	diverge := func(field string, expected, actual interface{}) {
		divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
	}

	if a.RunID != b.RunID {
		diverge("RunID", a.RunID, b.RunID)
	}
	if a.Symbol != b.Symbol {
		diverge("Symbol", a.Symbol, b.Symbol)
	}
	if a.StrategyID != b.StrategyID {
		diverge("StrategyID", a.StrategyID, b.StrategyID)
	}
	if a.Flagged != b.Flagged {
		diverge("Flagged", a.Flagged, b.Flagged)
	}

	if a.Metrics != b.Metrics {
		diverge("Metrics", a.Metrics, b.Metrics)
	}

	if len(a.EquityCurve) != len(b.EquityCurve) {
		diverge("EquityCurve length", len(a.EquityCurve), len(b.EquityCurve))
	} else {
		for i := range a.EquityCurve {
			if a.EquityCurve[i] != b.EquityCurve[i] {
				diverge(fmt.Sprintf("EquityCurve[%d]", i), a.EquityCurve[i], b.EquityCurve[i])
			}
		}
	}

	if len(a.Trades) != len(b.Trades) {
		diverge("Trades length", len(a.Trades), len(b.Trades))
	} else {
		for i := range a.Trades {
			compareTrade(i, a.Trades[i], b.Trades[i], diverge)
		}
	}

	return divergences
}

func compareTrade(i int, a, b *domain.Trade, diverge func(string, interface{}, interface{})) {
	if a.TradeID != b.TradeID {
		diverge(fmt.Sprintf("Trades[%d].TradeID", i), a.TradeID, b.TradeID)
	}
	if a.EntryPrice != b.EntryPrice {
		diverge(fmt.Sprintf("Trades[%d].EntryPrice", i), a.EntryPrice, b.EntryPrice)
	}
	if a.ExitPrice != b.ExitPrice {
		diverge(fmt.Sprintf("Trades[%d].ExitPrice", i), a.ExitPrice, b.ExitPrice)
	}
	if a.PnL != b.PnL {
		diverge(fmt.Sprintf("Trades[%d].PnL", i), a.PnL, b.PnL)
	}
	if a.Status != b.Status {
		diverge(fmt.Sprintf("Trades[%d].Status", i), a.Status, b.Status)
	}
	if a.ExitReason != b.ExitReason {
		diverge(fmt.Sprintf("Trades[%d].ExitReason", i), a.ExitReason, b.ExitReason)
	}
}
