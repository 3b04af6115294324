package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository. The table is
// append-only; there are no update or delete paths.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create appends an audit entry.
func (r *AuditRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, account_id, transfer_id, operation, amount, previous_balance, new_balance, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := queryTarget(r.pool, tx).Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.TransferID,
		string(entry.Operation),
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.PreviousBalance),
		decimalToNumeric(entry.NewBalance),
		entry.Description,
		entry.CreatedAt,
	)

	return translateError(err)
}

// ListByAccount returns the account's most recent entries, newest first.
func (r *AuditRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, account_id, transfer_id, operation, amount, previous_balance, new_balance, description, created_at
		FROM audit_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SumByAccount replays the full trail for an account as a single aggregate.
func (r *AuditRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM audit_entries WHERE account_id = $1`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, translateError(err)
	}

	return numericToDecimal(sum), nil
}

func scanAuditRow(row pgx.Row) (*domain.AuditEntry, error) {
	var (
		entry           domain.AuditEntry
		operation       string
		amount          pgtype.Numeric
		previousBalance pgtype.Numeric
		newBalance      pgtype.Numeric
	)

	if err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.TransferID,
		&operation,
		&amount,
		&previousBalance,
		&newBalance,
		&entry.Description,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}

	entry.Operation = domain.AuditOperation(operation)
	entry.Amount = numericToDecimal(amount)
	entry.PreviousBalance = numericToDecimal(previousBalance)
	entry.NewBalance = numericToDecimal(newBalance)

	return &entry, nil
}
