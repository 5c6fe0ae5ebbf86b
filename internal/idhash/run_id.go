package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRunID computes a deterministic backtest run_id using SHA256.
// Formula: SHA256(symbol|strategy_id|start_unix|end_unix|seed)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(
	symbol string,
	strategyID string,
	start time.Time,
	end time.Time,
	seed int64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%d",
		symbol,
		strategyID,
		start.Unix(),
		end.Unix(),
		seed,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
