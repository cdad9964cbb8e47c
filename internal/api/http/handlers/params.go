package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/auth"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok || p.User == nil {
		return nil, apperrors.NewUnauthorized("Authentication credentials were not provided.")
	}
	return p, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{"field": name})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
