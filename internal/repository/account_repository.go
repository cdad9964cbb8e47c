package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
)

// AccountRepository encapsulates balance and ledger persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	// GetByUserIDForUpdate locks the account row until the surrounding transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, accountID int64, limit, offset int) ([]domain.LedgerEntry, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates repository.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (user_id, balance)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, account.UserID, account.Balance).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return mapError(err)
}

func (r *accountRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	const query = `
        SELECT id, user_id, balance, created_at, updated_at
        FROM accounts WHERE user_id=$1 ORDER BY id`
	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.UserID, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

func (r *accountRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Account, error) {
	const query = `
        SELECT id, user_id, balance, created_at, updated_at
        FROM accounts WHERE user_id=$1
        FOR UPDATE`
	var account domain.Account
	if err := conn(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&account.ID,
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	const query = `
        UPDATE accounts SET balance=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, balance, accountID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	const query = `
        INSERT INTO ledger_entries (account_id, kind, amount, balance_after)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		entry.AccountID,
		entry.Kind,
		entry.Amount,
		entry.BalanceAfter,
	).Scan(&entry.ID, &entry.CreatedAt)
	return mapError(err)
}

func (r *accountRepository) ListEntries(ctx context.Context, accountID int64, limit, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, account_id, kind, amount, balance_after, created_at
        FROM ledger_entries WHERE account_id=$1
        ORDER BY id DESC LIMIT $2 OFFSET $3`
	rows, err := conn(ctx, r.pool).Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

func scanLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	var result []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Kind,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
