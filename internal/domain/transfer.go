package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferState represents the lifecycle state of a transfer.
type TransferState string

const (
	TransferStatePending   TransferState = "pending"
	TransferStateConfirmed TransferState = "confirmed"
	TransferStateRejected  TransferState = "rejected"
)

// Transfer represents a request to move funds between two accounts.
type Transfer struct {
	ID                   string
	OriginAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	State                TransferState
	RequestedAt          time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate validates a transfer request.
func (t *Transfer) Validate() error {
	if t.OriginAccountID == t.DestinationAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// RequiresApproval reports whether the amount is above the manual-approval
// threshold.
func (t *Transfer) RequiresApproval(threshold decimal.Decimal) bool {
	return t.Amount.GreaterThan(threshold)
}

// Confirm moves a pending transfer to confirmed. Terminal states are final.
func (t *Transfer) Confirm(now time.Time) error {
	if t.State != TransferStatePending {
		return ErrTransferNotPending
	}

	t.State = TransferStateConfirmed
	t.UpdatedAt = now

	return nil
}

// Reject moves a pending transfer to rejected. Terminal states are final.
func (t *Transfer) Reject(now time.Time) error {
	if t.State != TransferStatePending {
		return ErrTransferNotPending
	}

	t.State = TransferStateRejected
	t.UpdatedAt = now

	return nil
}
