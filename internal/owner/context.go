// Package owner carries the authenticated caller through a request and
// scopes queries to the records that caller owns.
package owner

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const localsKey = "identity"

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Set stores the identity on the request.
func Set(c *fiber.Ctx, id auth.Identity) {
	c.Locals(localsKey, id)
}

// Get extracts the identity stored by the auth middleware.
func Get(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := c.Locals(localsKey).(auth.Identity)
	if !ok || id.ID == "" {
		return auth.Identity{}, ErrNoIdentity
	}
	return id, nil
}
