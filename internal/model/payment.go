package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSourceBank marks payments generated by bank statement matching.
// Other payment-entry paths exist elsewhere in the system and use their own
// source labels.
const PaymentSourceBank = "bank"

// Payment is a collection record. The reconciliation service is the sole
// writer of payments with source "bank": created exactly once per match,
// deleted exactly once per unmatch.
type Payment struct {
	Date       time.Time
	CreatedAt  time.Time
	Source     string
	Note       string
	Amount     decimal.Decimal
	ID         int64
	CustomerID int64
}
