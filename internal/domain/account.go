package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered account holding a non-negative balance.
type Account struct {
	ID        string
	Name      string
	Email     string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Available returns the balance minus funds reserved by the account's own
// pending outgoing transfers.
func (a *Account) Available(pendingOutgoing decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(pendingOutgoing)
}

// ValidateDebit checks whether amount can leave the account given its
// currently reserved funds.
func (a *Account) ValidateDebit(amount, pendingOutgoing decimal.Decimal) error {
	if a.Available(pendingOutgoing).LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
