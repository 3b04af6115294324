package domain

import "errors"

var (
	// Request validation errors, detected before any lock is taken.
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrSameAccount            = errors.New("cannot transfer to the same account")
	ErrNegativeInitialBalance = errors.New("initial balance cannot be negative")

	// Lookup errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrTransferNotFound = errors.New("transfer not found")

	// State machine errors
	ErrTransferNotPending = errors.New("transfer is not in pending state")

	// Funds errors
	ErrInsufficientFunds = errors.New("insufficient available funds")

	// Duplicate suppression and uniqueness errors
	ErrDuplicateTransfer  = errors.New("duplicate transfer request")
	ErrEmailAlreadyExists = errors.New("email is already registered")

	// ErrRetryable marks storage-level contention (deadlock or lock timeout).
	// The whole operation rolled back; the caller may retry with the same
	// request fingerprint.
	ErrRetryable = errors.New("operation aborted by storage contention")
)
