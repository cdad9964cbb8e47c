package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/service"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// AccountHandler exposes the caller's account and its balance operations.
type AccountHandler struct {
	ledger *service.LedgerService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// List GET /account.
func (h *AccountHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	accounts, err := h.ledger.ListAccounts(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(items)
}

// Deposit POST /account/deposit.
func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.DepositRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if !req.DepositAmount.Valid {
		return apperrors.NewValidationError("depositAmount is required", map[string]any{"field": "depositAmount"})
	}
	account, err := h.ledger.Deposit(c.UserContext(), p.UserID(), req.DepositAmount.Decimal)
	if err != nil {
		return err
	}
	return c.JSON(dto.BalanceResponse{Detail: "Deposit successful.", NewBalance: dto.NewMoney(account.Balance)})
}

// Withdraw POST /account/withdraw.
func (h *AccountHandler) Withdraw(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.WithdrawRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if !req.CartTotal.Valid {
		return apperrors.NewValidationError("cart_Total is required", map[string]any{"field": "cart_Total"})
	}
	account, err := h.ledger.Withdraw(c.UserContext(), p.UserID(), req.CartTotal.Decimal)
	if err != nil {
		return err
	}
	return c.JSON(dto.BalanceResponse{Detail: "Withdrawal successful.", NewBalance: dto.NewMoney(account.Balance)})
}

// Transactions GET /account/transactions?limit=&offset=.
func (h *AccountHandler) Transactions(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	entries, err := h.ledger.ListEntries(c.UserContext(), p.UserID(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewLedgerEntryResponse(&entries[i]))
	}
	return c.JSON(items)
}
