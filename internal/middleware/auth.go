package middleware

import (
	"context"

	"instogram/internal/models"
	"instogram/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves an Authorization header to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

// Authenticated rejects requests without a valid bearer token. On success the
// principal is stored in c.Locals("user") and its id in c.Locals("userID").
func Authenticated(gate Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := gate.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.SetUserContext(observability.WithUserID(c.UserContext(), user.ID))

		return c.Next()
	}
}
