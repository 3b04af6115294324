package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintra/payledger/internal/domain"
	"github.com/fintra/payledger/internal/usecase"
)

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	pool *pgxpool.Pool
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

const transferColumns = `id, origin_account_id, destination_account_id, amount, state, requested_at, created_at, updated_at`

// Create inserts a new transfer.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers (id, origin_account_id, destination_account_id, amount, state, requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := queryTarget(r.pool, tx).Exec(ctx, query,
		transfer.ID,
		transfer.OriginAccountID,
		transfer.DestinationAccountID,
		decimalToNumeric(transfer.Amount),
		string(transfer.State),
		transfer.RequestedAt,
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	return r.scanTransfer(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a transfer by ID with a FOR UPDATE lock.
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1 FOR UPDATE`

	return r.scanTransfer(queryTarget(r.pool, tx).QueryRow(ctx, query, id))
}

// UpdateState moves a transfer to a new state.
func (r *TransferRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, state domain.TransferState, updatedAt time.Time) error {
	query := `UPDATE transfers SET state = $2, updated_at = $3 WHERE id = $1`

	tag, err := queryTarget(r.pool, tx).Exec(ctx, query, id, string(state), updatedAt)
	if err != nil {
		return translateError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransferNotFound
	}

	return nil
}

// ListByAccount lists transfers where the account appears on either side,
// most recently requested first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE origin_account_id = $1 OR destination_account_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var transfers []*domain.Transfer
	for rows.Next() {
		transfer, err := scanTransferRow(rows)
		if err != nil {
			return nil, err
		}

		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

// SumPendingOutgoing sums the amounts of pending transfers originating from
// the account. Callers holding the account row lock get a stable view.
func (r *TransferRepository) SumPendingOutgoing(ctx context.Context, tx usecase.Transaction, originID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transfers
		WHERE origin_account_id = $1 AND state = 'pending'
	`

	var sum pgtype.Numeric
	if err := queryTarget(r.pool, tx).QueryRow(ctx, query, originID).Scan(&sum); err != nil {
		return decimal.Zero, translateError(err)
	}

	return numericToDecimal(sum), nil
}

func (r *TransferRepository) scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	transfer, err := scanTransferRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}

		return nil, translateError(err)
	}

	return transfer, nil
}

func scanTransferRow(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer domain.Transfer
		amount   pgtype.Numeric
		state    string
	)

	if err := row.Scan(
		&transfer.ID,
		&transfer.OriginAccountID,
		&transfer.DestinationAccountID,
		&amount,
		&state,
		&transfer.RequestedAt,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	); err != nil {
		return nil, err
	}

	transfer.Amount = numericToDecimal(amount)
	transfer.State = domain.TransferState(state)

	return &transfer, nil
}
