package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account creation and retrieval.
type AccountUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name           string
	Email          string
	InitialBalance decimal.Decimal
}

// CreateAccount creates an account. A positive initial balance is recorded as
// an INITIAL_BALANCE audit entry so the trail reconstructs the balance from
// zero.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	if err := domain.ValidateInitialBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Email:     input.Email,
		Balance:   input.InitialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	if input.InitialBalance.GreaterThan(decimal.Zero) {
		entry := &domain.AuditEntry{
			ID:              uc.idGen.Generate(),
			AccountID:       account.ID,
			Operation:       domain.AuditOperationInitialBalance,
			Amount:          input.InitialBalance,
			PreviousBalance: decimal.Zero,
			NewBalance:      input.InitialBalance,
			Description:     fmt.Sprintf("Initial balance set to %s", input.InitialBalance.String()),
			CreatedAt:       now,
		}

		if err := uc.auditRepo.Create(txCtx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account together with its available balance.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, decimal.Decimal, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, decimal.Zero, err
	}

	pending, err := uc.transferRepo.SumPendingOutgoing(ctx, nil, id)
	if err != nil {
		return nil, decimal.Zero, err
	}

	return account, account.Available(pending), nil
}
