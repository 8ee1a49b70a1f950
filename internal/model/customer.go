package model

import "time"

// Customer is owned by the CRM side of the system. The reconciliation core
// only reads Name, TaxID and Phone for matching and never writes back.
type Customer struct {
	CreatedAt time.Time
	Name      string
	TaxID     string
	Phone     string
	ID        int64
}
