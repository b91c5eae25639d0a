package middleware

import (
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/owner"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth resolves the bearer token into an identity for the handlers
// behind it. Requests without a valid token stop here with 401.
func RequireAuth(authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := authn.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Authentication required"))
		}
		owner.Set(c, identity)
		return c.Next()
	}
}
