package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

// TokenManager issues and verifies HS256 access tokens carrying the caller
// identity.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a TokenManager from the auth configuration.
func NewTokenManager(cfg config.Config) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    cfg.Auth.TokenTTL,
	}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates a signed token for the identity.
func (m *TokenManager) Issue(identity Identity) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

// Verify parses a token and returns the embedded identity.
func (m *TokenManager) Verify(raw string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, errorbank.Unauthorized("invalid or expired token", errorbank.WithCause(err))
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return Identity{}, errorbank.Unauthorized("malformed token claims")
	}
	return Identity{Username: c.Subject, Role: c.Role}, nil
}
