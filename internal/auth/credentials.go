// Package auth issues and verifies bearer tokens and password digests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"instogram/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	Issuer   = "instogram-api"
	Audience = "instogram-client"
)

// ErrMissingSubject is returned by Decode when a token carries no subject.
var ErrMissingSubject = errors.New("token has no subject")

// Claims is the decoded payload of an access token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Credentials holds the signing secret and token lifetime. It is built once
// at startup and never mutated, so it is safe for concurrent use.
type Credentials struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewCredentials builds Credentials from the loaded configuration.
func NewCredentials(cfg *config.Config) *Credentials {
	return &Credentials{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry,
		now:    time.Now,
	}
}

// HashPassword returns a bcrypt digest of password.
func (c *Credentials) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches digest.
func (c *Credentials) VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Issue signs an HS256 token for subjectID.
func (c *Credentials) Issue(subjectID string) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies signature, algorithm, expiry, issuer and audience and
// returns the token claims.
func (c *Credentials) Decode(tokenString string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	out := &Claims{Subject: claims.Subject, ID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
