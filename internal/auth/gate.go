package auth

import (
	"context"
	"strings"

	"instogram/internal/models"
)

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Gate turns an Authorization header into an authenticated principal.
type Gate struct {
	creds *Credentials
	users UserLookup
}

// NewGate creates a Gate backed by creds and users.
func NewGate(creds *Credentials, users UserLookup) *Gate {
	return &Gate{creds: creds, users: users}
}

// Authenticate resolves header ("Bearer <token>") to a user. Credential
// problems are reported as UNAUTHORIZED; storage failures propagate as-is.
func (g *Gate) Authenticate(ctx context.Context, header string) (*models.User, error) {
	if strings.TrimSpace(header) == "" {
		return nil, models.NewUnauthorizedError("missing credentials")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, models.NewUnauthorizedError("malformed credentials")
	}

	claims, err := g.creds.Decode(parts[1])
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid or expired token")
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("principal not found")
		}
		return nil, err
	}
	return user, nil
}
