package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/infrastructure/metrics"
)

// TransferUseCase is the ledger transaction engine. It owns the account
// locking protocol, available-balance accounting and the
// pending/confirmed/rejected state machine. Account balances and audit
// entries are mutated here and nowhere else.
type TransferUseCase struct {
	txManager         TransactionManager
	accountRepo       AccountRepository
	transferRepo      TransferRepository
	auditRepo         AuditRepository
	dedup             DedupGuard
	idGen             IDGenerator
	metrics           *metrics.Metrics
	approvalThreshold decimal.Decimal
	dedupTTL          time.Duration
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	auditRepo AuditRepository,
	dedup DedupGuard,
	idGen IDGenerator,
	m *metrics.Metrics,
	approvalThreshold decimal.Decimal,
	dedupTTL time.Duration,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:         txManager,
		accountRepo:       accountRepo,
		transferRepo:      transferRepo,
		auditRepo:         auditRepo,
		dedup:             dedup,
		idGen:             idGen,
		metrics:           m,
		approvalThreshold: approvalThreshold,
		dedupTTL:          dedupTTL,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	OriginAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
}

// CreateTransfer creates a transfer. Amounts above the approval threshold are
// inserted PENDING and reserve funds; everything else is confirmed and applied
// in the same atomic unit.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	start := time.Now()

	// Validate before any lock or storage access.
	if input.OriginAccountID == input.DestinationAccountID {
		return nil, domain.ErrSameAccount
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if err := uc.suppressDuplicate(ctx, input); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	origin, destination, err := uc.lockAccountPair(txCtx, tx, input.OriginAccountID, input.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.transferRepo.SumPendingOutgoing(txCtx, tx, origin.ID)
	if err != nil {
		return nil, err
	}

	if err := origin.ValidateDebit(input.Amount, pending); err != nil {
		uc.countError(err)
		return nil, err
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:                   uc.idGen.Generate(),
		OriginAccountID:      input.OriginAccountID,
		DestinationAccountID: input.DestinationAccountID,
		Amount:               input.Amount,
		State:                domain.TransferStateConfirmed,
		RequestedAt:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if transfer.RequiresApproval(uc.approvalThreshold) {
		transfer.State = domain.TransferStatePending
	}

	if err := uc.transferRepo.Create(txCtx, tx, transfer); err != nil {
		return nil, err
	}

	if transfer.State == domain.TransferStateConfirmed {
		if err := uc.applyConfirmed(txCtx, tx, transfer, origin, destination, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.WithLabelValues(string(transfer.State)).Inc()
		uc.metrics.TransferAmount.Observe(input.Amount.InexactFloat64())
		uc.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}

	return transfer, nil
}

// ApproveTransfer confirms a pending transfer and applies its balance
// mutations, atomically.
func (uc *TransferUseCase) ApproveTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transfer, err := uc.lockPendingTransfer(txCtx, tx, transferID)
	if err != nil {
		return nil, err
	}

	origin, destination, err := uc.lockAccountPair(txCtx, tx, transfer.OriginAccountID, transfer.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	pending, err := uc.transferRepo.SumPendingOutgoing(txCtx, tx, origin.ID)
	if err != nil {
		return nil, err
	}

	// The transfer being approved is itself part of the pending sum; its own
	// reservation must not count against it.
	pendingMinusThis := pending.Sub(transfer.Amount)

	if err := origin.ValidateDebit(transfer.Amount, pendingMinusThis); err != nil {
		uc.countError(err)
		return nil, err
	}

	now := time.Now().UTC()
	if err := transfer.Confirm(now); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.UpdateState(txCtx, tx, transfer.ID, transfer.State, now); err != nil {
		return nil, err
	}

	if err := uc.applyConfirmed(txCtx, tx, transfer, origin, destination, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersConfirmed.Inc()
	}

	return transfer, nil
}

// RejectTransfer moves a pending transfer to rejected. No balance changes.
func (uc *TransferUseCase) RejectTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transfer, err := uc.lockPendingTransfer(txCtx, tx, transferID)
	if err != nil {
		return nil, err
	}

	// Locked purely to serialize against concurrent creation or approval
	// touching the same accounts.
	if _, _, err := uc.lockAccountPair(txCtx, tx, transfer.OriginAccountID, transfer.DestinationAccountID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := transfer.Reject(now); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.UpdateState(txCtx, tx, transfer.ID, transfer.State, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersRejected.Inc()
	}

	return transfer, nil
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccount lists transfers where the account is origin or
// destination, newest request date first.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
	return uc.transferRepo.ListByAccount(ctx, accountID)
}

// suppressDuplicate asks the dedup guard whether this request was seen within
// the suppression window and records it otherwise. Best-effort only.
func (uc *TransferUseCase) suppressDuplicate(ctx context.Context, input CreateTransferInput) error {
	if uc.dedup == nil {
		return nil
	}

	fingerprint := domain.RequestFingerprint(input.OriginAccountID, input.DestinationAccountID, input.Amount)

	seen, err := uc.dedup.Seen(ctx, fingerprint)
	if err != nil {
		return err
	}

	if seen {
		if uc.metrics != nil {
			uc.metrics.DuplicatesSuppressed.Inc()
		}

		return fmt.Errorf("%w: wait %s before retrying the same transfer", domain.ErrDuplicateTransfer, uc.dedupTTL)
	}

	return uc.dedup.Remember(ctx, fingerprint, uc.dedupTTL)
}

// lockPendingTransfer takes the exclusive row lock on the transfer and checks
// that it is still pending.
func (uc *TransferUseCase) lockPendingTransfer(ctx context.Context, tx Transaction, transferID string) (*domain.Transfer, error) {
	transfer, err := uc.transferRepo.GetByIDForUpdate(ctx, tx, transferID)
	if err != nil {
		return nil, err
	}

	if transfer.State != domain.TransferStatePending {
		return nil, domain.ErrTransferNotPending
	}

	return transfer, nil
}

// lockAccountPair acquires exclusive row locks on both accounts in sorted ID
// order regardless of transfer direction, then maps the locked rows back to
// origin/destination roles. Any two operations touching an overlapping pair
// request locks in the same global order, so no circular wait can form.
func (uc *TransferUseCase) lockAccountPair(ctx context.Context, tx Transaction, originID, destinationID string) (*domain.Account, *domain.Account, error) {
	ids := []string{originID, destinationID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	var origin, destination *domain.Account
	for _, account := range accounts {
		switch account.ID {
		case originID:
			origin = account
		case destinationID:
			destination = account
		}
	}

	if origin == nil || destination == nil {
		return nil, nil, domain.ErrAccountNotFound
	}

	return origin, destination, nil
}

// applyConfirmed runs the balance-mutation protocol: debit origin, credit
// destination, and append one audit entry per side, all inside the caller's
// transaction. It runs exactly once per confirmed transfer.
func (uc *TransferUseCase) applyConfirmed(
	ctx context.Context,
	tx Transaction,
	transfer *domain.Transfer,
	origin, destination *domain.Account,
	now time.Time,
) error {
	originNewBalance := origin.ApplyDebit(transfer.Amount)
	debitEntry := &domain.AuditEntry{
		ID:              uc.idGen.Generate(),
		AccountID:       origin.ID,
		TransferID:      &transfer.ID,
		Operation:       domain.AuditOperationDebit,
		Amount:          transfer.Amount.Neg(),
		PreviousBalance: origin.Balance,
		NewBalance:      originNewBalance,
		Description:     fmt.Sprintf("Payment sent to %s", destination.Name),
		CreatedAt:       now,
	}

	if err := uc.auditRepo.Create(ctx, tx, debitEntry); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, origin.ID, originNewBalance, now); err != nil {
		return err
	}

	origin.Balance = originNewBalance

	destinationNewBalance := destination.ApplyCredit(transfer.Amount)
	creditEntry := &domain.AuditEntry{
		ID:              uc.idGen.Generate(),
		AccountID:       destination.ID,
		TransferID:      &transfer.ID,
		Operation:       domain.AuditOperationCredit,
		Amount:          transfer.Amount,
		PreviousBalance: destination.Balance,
		NewBalance:      destinationNewBalance,
		Description:     fmt.Sprintf("Payment received from %s", origin.Name),
		CreatedAt:       now,
	}

	if err := uc.auditRepo.Create(ctx, tx, creditEntry); err != nil {
		return err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, destination.ID, destinationNewBalance, now); err != nil {
		return err
	}

	destination.Balance = destinationNewBalance

	return nil
}

func (uc *TransferUseCase) countError(err error) {
	if uc.metrics == nil {
		return
	}

	switch err {
	case domain.ErrInsufficientFunds:
		uc.metrics.TransferErrors.WithLabelValues("insufficient_funds").Inc()
	default:
		uc.metrics.TransferErrors.WithLabelValues("other").Inc()
	}
}
