package model

import "time"

// BankAccount is a company bank account that statements are ingested under.
// Accounts are never deleted, only deactivated.
type BankAccount struct {
	CreatedAt time.Time
	Name      string
	Bank      string
	IBAN      string
	ID        int64
	Active    bool
}
