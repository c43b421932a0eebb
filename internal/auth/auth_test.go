package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"instogram/internal/config"
	"instogram/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentials() *Credentials {
	return NewCredentials(&config.Config{
		JWTSecret: "test-secret-at-least-32-characters-long",
		JWTExpiry: time.Hour,
	})
}

type userLookupStub struct {
	getByIDFn func(ctx context.Context, id string) (*models.User, error)
}

func (s userLookupStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func TestCredentials_PasswordRoundTrip(t *testing.T) {
	creds := testCredentials()

	digest, err := creds.HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", digest)
	assert.True(t, creds.VerifyPassword("hunter2", digest))
	assert.False(t, creds.VerifyPassword("hunter3", digest))
}

func TestCredentials_IssueAndDecode(t *testing.T) {
	creds := testCredentials()

	token, err := creds.Issue("user-1")
	require.NoError(t, err)

	claims, err := creds.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestCredentials_DecodeRejects(t *testing.T) {
	creds := testCredentials()

	other := NewCredentials(&config.Config{JWTSecret: "a-completely-different-secret-value", JWTExpiry: time.Hour})
	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	expiredCreds := testCredentials()
	expiredCreds.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredCreds.Issue("user-1")
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(creds.secret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(creds.secret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := creds.Decode(token)
			assert.Error(t, err)
		})
	}
}

func TestGate_Authenticate(t *testing.T) {
	creds := testCredentials()
	token, err := creds.Issue("user-1")
	require.NoError(t, err)
	ghost, err := creds.Issue("ghost")
	require.NoError(t, err)

	users := userLookupStub{getByIDFn: func(_ context.Context, id string) (*models.User, error) {
		switch id {
		case "user-1":
			return &models.User{ID: "user-1", Username: "bob"}, nil
		case "broken":
			return nil, models.NewInternalError(errors.New("db down"))
		default:
			return nil, models.NewNotFoundError("User", id)
		}
	}}
	gate := NewGate(creds, users)

	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{"missing header", "", "missing credentials"},
		{"wrong scheme", "Basic " + token, "malformed credentials"},
		{"no token part", "Bearer", "malformed credentials"},
		{"bad token", "Bearer nope", "invalid or expired token"},
		{"unknown principal", "Bearer " + ghost, "principal not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Authenticate(context.Background(), tt.header)
			require.Error(t, err)
			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeUnauthorized, appErr.Code)
			assert.Equal(t, tt.wantErr, appErr.Message)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		user, err := gate.Authenticate(context.Background(), "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "bob", user.Username)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		broken, err := creds.Issue("broken")
		require.NoError(t, err)
		_, err = gate.Authenticate(context.Background(), "Bearer "+broken)
		assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	})
}
