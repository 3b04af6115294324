package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transfer, error)
	UpdateState(ctx context.Context, tx Transaction, id string, state domain.TransferState, updatedAt time.Time) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error)
	SumPendingOutgoing(ctx context.Context, tx Transaction, originID string) (decimal.Decimal, error)
}

// AuditRepository defines data access for the append-only audit trail.
type AuditRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.AuditEntry) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditEntry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// DedupGuard is the short-lived duplicate-request store. It is deliberately
// outside the ledger's atomic unit: a narrow race where two identical requests
// both pass Seen before either Remember lands is accepted. It is a soft
// throttle, not a correctness guarantee.
type DedupGuard interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Remember(ctx context.Context, fingerprint string, ttl time.Duration) error
}

// Cache defines caching operations backed by an expiring key-value store.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AdvisoryRequest carries the audit-history metrics handed to the external
// risk advisory.
type AdvisoryRequest struct {
	Balance           decimal.Decimal
	TotalTransactions int
	CreditCount       int
	DebitCount        int
	MaxAmount         decimal.Decimal
	TotalCredits      decimal.Decimal
	TotalDebits       decimal.Decimal
}

// AdvisoryResult is the advisory's answer.
type AdvisoryResult struct {
	Score    int
	Analysis string
}

// AdvisoryClient reaches the external risk-scoring advisory within a bounded
// timeout. Callers must treat failures as non-fatal.
type AdvisoryClient interface {
	Assess(ctx context.Context, req AdvisoryRequest) (*AdvisoryResult, error)
}
