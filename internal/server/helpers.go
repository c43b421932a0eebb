package server

import (
	"errors"
	"log/slog"

	"instogram/internal/models"
	"instogram/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// currentUser returns the principal stored by the auth middleware.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, models.NewUnauthorizedError("missing credentials")
	}
	return user, nil
}

// respondError writes err with the status its code maps to. Errors that are
// not AppErrors are logged and reported as internal.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	if appErr.Code == models.CodeInternal {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithAppError(c, appErr)
}

// parseBody decodes the JSON body into out, answering 400 on malformed input.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// message is the body of operations that only acknowledge success.
type message struct {
	Message string `json:"message"`
}
