package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpareChange is the round-up accrued for exactly one transaction.
// (UserID, TxID) is the primary key, so a retried sync cannot double-accrue.
type SpareChange struct {
	UserID    int64           `json:"user_id"`
	TxID      string          `json:"tx_id"`
	RoundUp   decimal.Decimal `json:"round_up"`
	CreatedAt time.Time       `json:"created_at"`
}
