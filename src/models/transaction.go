package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TxTypeWithdraw = "withdraw"
	TxTypeDeposit  = "deposit"
)

// Transaction is one ledger entry pulled from the provider. The ID is derived
// from (account, transaction date, transaction time) because the provider does
// not guarantee an ID of its own. Rows are insert-only.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	TxType    string          `json:"tx_type"`
	Memo      *string         `json:"memo"`
	CreatedAt time.Time       `json:"created_at"`
}
