package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.data.users {
		if existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	user.ID = r.s.data.nextID("users")
	user.CreatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	defer r.s.lock(ctx)()
	user, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock(ctx)()
	for _, user := range r.s.data.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.users[account.UserID]; !ok {
		return repository.ErrReferenced
	}
	for _, existing := range r.s.data.accounts {
		if existing.UserID == account.UserID {
			return repository.ErrConflict
		}
	}
	account.ID = r.s.data.nextID("accounts")
	account.CreatedAt = r.s.now()
	account.UpdatedAt = account.CreatedAt
	r.s.data.accounts[account.ID] = *account
	return nil
}

func (r *accountRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	defer r.s.lock(ctx)()
	var result []domain.Account
	for _, account := range r.s.data.accounts {
		if account.UserID == userID {
			result = append(result, account)
		}
	}
	return result, nil
}

func (r *accountRepo) GetByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Account, error) {
	defer r.s.lock(ctx)()
	for _, account := range r.s.data.accounts {
		if account.UserID == userID {
			a := account
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	defer r.s.lock(ctx)()
	account, ok := r.s.data.accounts[accountID]
	if !ok {
		return repository.ErrNotFound
	}
	account.Balance = balance
	account.UpdatedAt = r.s.now()
	r.s.data.accounts[accountID] = account
	return nil
}

func (r *accountRepo) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.data.accounts[entry.AccountID]; !ok {
		return repository.ErrReferenced
	}
	entry.ID = r.s.data.nextID("ledger_entries")
	entry.CreatedAt = r.s.now()
	r.s.data.entries = append(r.s.data.entries, *entry)
	return nil
}

func (r *accountRepo) ListEntries(ctx context.Context, accountID int64, limit, offset int) ([]domain.LedgerEntry, error) {
	defer r.s.lock(ctx)()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var matched []domain.LedgerEntry
	for i := len(r.s.data.entries) - 1; i >= 0; i-- {
		if r.s.data.entries[i].AccountID == accountID {
			matched = append(matched, r.s.data.entries[i])
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}
