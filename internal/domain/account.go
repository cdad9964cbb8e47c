package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the monetary balance of a single user.
type Account struct {
	ID        int64
	UserID    int64
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LedgerEntryKind enumerates balance mutations.
type LedgerEntryKind string

const (
	LedgerEntryDeposit    LedgerEntryKind = "DEPOSIT"
	LedgerEntryWithdrawal LedgerEntryKind = "WITHDRAWAL"
)

// LedgerEntry is an append-only record of one balance mutation.
type LedgerEntry struct {
	ID           int64
	AccountID    int64
	Kind         LedgerEntryKind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}
