package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(symbol|strategy_id|entry_unix|sequence)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(
	symbol string,
	strategyID string,
	entryDate time.Time,
	sequence int,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		symbol,
		strategyID,
		entryDate.Unix(),
		sequence,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
