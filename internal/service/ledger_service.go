package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// LedgerService owns every balance mutation. Each one runs under the account row
// lock and appends a ledger entry in the same transaction.
type LedgerService struct {
	accounts   repository.AccountRepository
	tx         repository.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LedgerDependencies bundles repositories for the ledger service.
type LedgerDependencies struct {
	AccountRepo repository.AccountRepository
	Transactor  repository.Transactor
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewLedgerService constructs the service.
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	return &LedgerService{
		accounts:   deps.AccountRepo,
		tx:         deps.Transactor,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// ListAccounts returns the caller's accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// Deposit adds amount to the caller's balance.
func (s *LedgerService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateAmount("depositAmount", amount); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, domain.LedgerEntryDeposit, amount)
}

// Withdraw subtracts amount from the caller's balance, refusing to go negative.
func (s *LedgerService) Withdraw(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateAmount("cart_Total", amount); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, domain.LedgerEntryWithdrawal, amount)
}

// ListEntries pages through the caller's ledger, newest first.
func (s *LedgerService) ListEntries(ctx context.Context, userID int64, limit, offset int) ([]domain.LedgerEntry, error) {
	accounts, err := s.accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if len(accounts) == 0 {
		return nil, apperrors.NewNotFound("account", map[string]any{"user_id": userID})
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := s.accounts.ListEntries(ctx, accounts[0].ID, limit, offset)
	if err != nil {
		return nil, storageError(err)
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return entries, nil
}

func (s *LedgerService) apply(ctx context.Context, userID int64, kind domain.LedgerEntryKind, amount decimal.Decimal) (*domain.Account, error) {
	var account *domain.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.accounts.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return notFoundOr(err, "account", map[string]any{"user_id": userID})
		}

		balance := locked.Balance.Add(amount)
		if kind == domain.LedgerEntryWithdrawal {
			if locked.Balance.LessThan(amount) {
				return apperrors.NewInsufficientBalance()
			}
			balance = locked.Balance.Sub(amount)
		}
		if balance.GreaterThanOrEqual(maxLedgerAmount) {
			return apperrors.NewValidationError("Balance would exceed the account limit.", map[string]any{"field": "depositAmount"})
		}

		if err := s.accounts.UpdateBalance(ctx, locked.ID, balance); err != nil {
			return storageError(err)
		}
		if err := s.accounts.AppendEntry(ctx, &domain.LedgerEntry{
			AccountID:    locked.ID,
			Kind:         kind,
			Amount:       amount,
			BalanceAfter: balance,
		}); err != nil {
			return storageError(err)
		}
		locked.Balance = balance
		account = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventBalanceChanged, userID, events.BalanceChangedPayload{
		AccountID:  account.ID,
		Kind:       kind,
		Amount:     amount,
		NewBalance: account.Balance,
	}))
	return account, nil
}
