package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account, available decimal.Decimal) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Balance:          a.Balance,
		AvailableBalance: available,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID                   string          `json:"id"`
	OriginAccountID      string          `json:"origin_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	State                string          `json:"state"`
	RequestedAt          time.Time       `json:"requested_at"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TransferFromDomain converts a domain transfer to a response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                   t.ID,
		OriginAccountID:      t.OriginAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		State:                string(t.State),
		RequestedAt:          t.RequestedAt,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// ListTransfersResponse wraps a transfer listing.
type ListTransfersResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
	Total     int64               `json:"total"`
}

// AuditEntryResponse represents an audit entry in API responses.
type AuditEntryResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	TransferID      *string         `json:"transfer_id,omitempty"`
	Operation       string          `json:"operation"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AuditEntryFromDomain converts a domain audit entry to a response.
func AuditEntryFromDomain(e *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		TransferID:      e.TransferID,
		Operation:       string(e.Operation),
		Amount:          e.Amount,
		PreviousBalance: e.PreviousBalance,
		NewBalance:      e.NewBalance,
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
	}
}

// AuditEntriesFromDomain converts domain audit entries to responses.
func AuditEntriesFromDomain(entries []*domain.AuditEntry) []*AuditEntryResponse {
	result := make([]*AuditEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = AuditEntryFromDomain(e)
	}
	return result
}

// ListAuditResponse wraps an audit listing.
type ListAuditResponse struct {
	Entries []*AuditEntryResponse `json:"entries"`
	Total   int64                 `json:"total"`
}
