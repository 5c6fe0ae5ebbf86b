package reporting

import (
	"fmt"
	"strings"

	"options-strategy-lab/internal/domain"
)

// RenderResultsCSV renders strategy metric rows as a CSV string.
func RenderResultsCSV(rows []StrategyMetricRow) string {
	var sb strings.Builder

	sb.WriteString("strategy_id,symbol,run_id,trades,win_rate,total_return,cagr,sharpe,sortino,")
	sb.WriteString("max_drawdown,profit_factor,statistical_power\n")

	for _, m := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			m.StrategyID,
			m.Symbol,
			m.RunID,
			m.Trades,
			m.WinRate,
			m.TotalReturn,
			m.CAGR,
			m.Sharpe,
			m.Sortino,
			m.MaxDrawdown,
			m.ProfitFactor,
			m.StatisticalPower,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders simulated trades as a CSV string.
func RenderTradesCSV(trades []*domain.Trade) string {
	var sb strings.Builder

	sb.WriteString("trade_id,symbol,strategy_id,entry_date,entry_price,exit_date,exit_price,")
	sb.WriteString("commission,status,pnl,exit_reason\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.6f,%s,%.6f,%.2f,%s,%.2f,%s\n",
			t.TradeID,
			t.Symbol,
			t.StrategyID,
			t.EntryDate.Format("2006-01-02"),
			t.EntryPrice,
			t.ExitDate.Format("2006-01-02"),
			t.ExitPrice,
			t.Commission,
			t.Status,
			t.PnL,
			t.ExitReason,
		))
	}

	return sb.String()
}
