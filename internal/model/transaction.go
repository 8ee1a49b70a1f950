// Package model defines the core domain types for bank statement
// reconciliation.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a bank line item represents money received or
// money paid out.
type Direction string

// Transaction directions.
const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Status is the lifecycle state of a bank transaction.
type Status string

// Transaction statuses.
const (
	StatusUnmatched Status = "unmatched"
	StatusMatched   Status = "matched"
)

// BankTransaction is a single statement line persisted under a bank account.
//
// Invariant: Status is StatusMatched if and only if both CustomerID and
// PaymentID are non-nil. The three fields are set and cleared together by the
// reconciliation service; nothing else writes them.
type BankTransaction struct {
	Date        time.Time
	ImportedAt  time.Time
	Description string
	Sender      string
	Reference   string
	SourceFile  string
	Status      Status
	Direction   Direction
	// CustomerName is resolved on read when the transaction is matched;
	// it is never written back.
	CustomerName string
	Amount       decimal.Decimal
	ID           int64
	AccountID    int64
	CustomerID   *int64
	PaymentID    *int64
}

// IsMatched reports whether the transaction currently carries a match.
func (t *BankTransaction) IsMatched() bool {
	return t.Status == StatusMatched && t.CustomerID != nil && t.PaymentID != nil
}

// Receivable reports whether the transaction is eligible for matching: an
// incoming transaction with a positive amount.
func (t *BankTransaction) Receivable() bool {
	return t.Direction == DirectionIncoming && t.Amount.IsPositive()
}

// TransactionDraft is a parsed statement row before it is persisted.
type TransactionDraft struct {
	Date        time.Time
	Description string
	Sender      string
	Reference   string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Direction   Direction
}

// NewDraft builds a draft, normalizing a signed amount into a non-negative
// magnitude plus direction. A negative amount always becomes outgoing,
// whatever direction the caller supplied.
func NewDraft(date time.Time, description, sender string, amount decimal.Decimal, direction Direction) TransactionDraft {
	if amount.IsNegative() {
		amount = amount.Neg()
		direction = DirectionOutgoing
	}
	if direction != DirectionIncoming && direction != DirectionOutgoing {
		direction = DirectionIncoming
	}
	return TransactionDraft{
		Date:        date,
		Description: description,
		Sender:      sender,
		Amount:      amount,
		Direction:   direction,
	}
}
