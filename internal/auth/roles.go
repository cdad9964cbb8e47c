package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// RequireUser ensures a principal was resolved by AuthMiddleware.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("Authentication credentials were not provided.")
		}
		return c.Next()
	}
}

// RequireStaff ensures the principal carries the staff flag.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Authentication credentials were not provided.")
		}
		if !principal.IsStaff() {
			return apperrors.NewForbidden("You do not have permission to perform this action.")
		}
		return c.Next()
	}
}
