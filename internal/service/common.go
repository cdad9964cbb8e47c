package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// IdempotencyStore reserves client supplied keys and remembers what they produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

var (
	// maxLedgerAmount bounds NUMERIC(10,2): at most 8 integer digits.
	maxLedgerAmount = decimal.New(1, 8)
	// maxPrice bounds NUMERIC(6,2).
	maxPrice = decimal.New(1, 4)
)

// validateAmount enforces a positive value that fits NUMERIC(10,2) exactly.
func validateAmount(field string, amount decimal.Decimal) error {
	details := map[string]any{"field": field}
	if amount.Sign() <= 0 {
		return apperrors.NewValidationError("Amount must be positive.", details)
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.NewValidationError("Ensure that there are no more than 2 decimal places.", details)
	}
	if amount.GreaterThanOrEqual(maxLedgerAmount) {
		return apperrors.NewValidationError("Ensure that there are no more than 10 digits in total.", details)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	details := map[string]any{"field": "price"}
	if price.Sign() < 0 {
		return apperrors.NewValidationError("Price must not be negative.", details)
	}
	if !price.Equal(price.Round(2)) {
		return apperrors.NewValidationError("Ensure that there are no more than 2 decimal places.", details)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return apperrors.NewValidationError("Ensure that there are no more than 6 digits in total.", details)
	}
	return nil
}

func requireText(field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s is required", field), map[string]any{"field": field})
	}
	if maxLen > 0 && len([]rune(value)) > maxLen {
		return "", apperrors.NewValidationError(
			fmt.Sprintf("Ensure %s has no more than %d characters.", field, maxLen),
			map[string]any{"field": field},
		)
	}
	return value, nil
}

// storageError keeps domain errors and deadlines intact and hides everything else
// behind an internal error.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.NewInternalError(err)
}

// notFoundOr maps repository.ErrNotFound to a NotFound domain error.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, details)
	}
	return storageError(err)
}

// publish runs after the business transaction committed, so subscriber failures are
// logged and never returned to the caller.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Error("publish event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
