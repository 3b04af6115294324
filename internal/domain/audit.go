package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditOperation identifies the kind of balance mutation an entry records.
type AuditOperation string

const (
	AuditOperationDebit          AuditOperation = "DEBIT"
	AuditOperationCredit         AuditOperation = "CREDIT"
	AuditOperationInitialBalance AuditOperation = "INITIAL_BALANCE"
)

// AuditEntry is an immutable record of one balance change. Entries are
// append-only; they are never updated or deleted.
type AuditEntry struct {
	ID              string
	AccountID       string
	TransferID      *string
	Operation       AuditOperation
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Description     string
	CreatedAt       time.Time
}

// Consistent reports whether the entry's balances agree with its signed
// amount (NewBalance = PreviousBalance + Amount).
func (e *AuditEntry) Consistent() bool {
	return e.PreviousBalance.Add(e.Amount).Equal(e.NewBalance)
}
