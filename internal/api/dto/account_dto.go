package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/shop-service/internal/domain"
)

// AccountResponse lists an account of the caller.
type AccountResponse struct {
	ID      int64 `json:"id"`
	Balance Money `json:"balance"`
	User    int64 `json:"user"`
}

// DepositRequest payload. The amount is decoded from its literal text.
type DepositRequest struct {
	DepositAmount decimal.NullDecimal `json:"depositAmount"`
}

// WithdrawRequest payload.
type WithdrawRequest struct {
	CartTotal decimal.NullDecimal `json:"cart_Total"`
}

// BalanceResponse confirms a balance mutation.
type BalanceResponse struct {
	Detail     string `json:"detail"`
	NewBalance Money  `json:"new_balance"`
}

// LedgerEntryResponse is one audit row.
type LedgerEntryResponse struct {
	ID           int64                  `json:"id"`
	Kind         domain.LedgerEntryKind `json:"kind"`
	Amount       Money                  `json:"amount"`
	BalanceAfter Money                  `json:"balance_after"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewAccountResponse maps an account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Balance: NewMoney(a.Balance), User: a.UserID}
}

// NewLedgerEntryResponse maps a ledger entry.
func NewLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           e.ID,
		Kind:         e.Kind,
		Amount:       NewMoney(e.Amount),
		BalanceAfter: NewMoney(e.BalanceAfter),
		CreatedAt:    e.CreatedAt,
	}
}
