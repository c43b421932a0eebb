package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"instogram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"validation", models.NewValidationError("Content is required"), http.StatusBadRequest, models.CodeValidation, "Content is required"},
		{"unauthorized", models.NewUnauthorizedError("invalid credentials"), http.StatusUnauthorized, models.CodeUnauthorized, "invalid credentials"},
		{"not found", models.NewNotFoundError("Post", "p1"), http.StatusNotFound, models.CodeNotFound, "Post with ID p1 not found"},
		{"conflict", models.NewConflictError("Post already exists"), http.StatusConflict, models.CodeConflict, "Post already exists"},
		{"plain error is internal", errors.New("dial tcp: refused"), http.StatusInternalServerError, models.CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Empty(t, body.Details)
		})
	}
}

func TestCurrentUserRequiresPrincipal(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/me/posts", s.GetMyPosts)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me/posts", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return models.NewConflictError("taken") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
