package domain

import "time"

// LegType identifies the instrument of a trade leg.
type LegType string

// Leg type constants.
const (
	LegTypeCall  LegType = "CALL"
	LegTypePut   LegType = "PUT"
	LegTypeStock LegType = "STOCK"
)

// Side identifies the direction of a trade leg.
type Side string

// Side constants.
const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// TradeStatus tracks the lifecycle of a trade: OPEN → CLOSED | EXPIRED.
type TradeStatus string

// Trade status constants.
const (
	TradeStatusOpen    TradeStatus = "OPEN"
	TradeStatusClosed  TradeStatus = "CLOSED"
	TradeStatusExpired TradeStatus = "EXPIRED"
)

// TradeLeg is one leg of a simulated trade.
// Strike and Expiry are zero-valued for stock legs.
type TradeLeg struct {
	Type     LegType
	Side     Side
	Quantity int
	Strike   float64
	Expiry   time.Time
}

// Trade represents a simulated position with full execution details.
type Trade struct {
	TradeID    string // deterministic hash
	Symbol     string
	StrategyID string

	Legs []TradeLeg

	EntryDate  time.Time
	EntryPrice float64 // net entry price per unit, after slippage
	ExitDate   time.Time
	ExitPrice  float64 // net exit price per unit, after slippage

	Commission float64 // total round-trip commission
	Status     TradeStatus
	PnL        float64 // realized, set once Status != OPEN
	ExitReason string
}

// Exit reason codes.
const (
	ExitReasonSignal      = "SIGNAL"
	ExitReasonStop        = "STOP"
	ExitReasonExpiry      = "EXPIRY"
	ExitReasonMaxDuration = "MAX_DURATION"
	ExitReasonEndOfData   = "END_OF_DATA"
)

// IsWin reports whether the closed trade realized a positive P&L.
// Zero-P&L trades count as losses.
func (t *Trade) IsWin() bool {
	return t.Status != TradeStatusOpen && t.PnL > 0
}
