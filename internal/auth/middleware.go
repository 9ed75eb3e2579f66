package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

// Echo context keys holding the caller identity.
const (
	ContextKeyUsername = "auth.username"
	ContextKeyRole     = "auth.role"
)

// Middleware extracts the caller identity from a Bearer token and stores it
// on the request context. When auth is disabled it is a no-op and handlers
// fall back to the role/username query parameters forwarded by the gateway.
func Middleware(cfg config.Config, tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Auth.Enabled {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				return errorbank.Unauthorized("missing bearer token")
			}

			identity, err := tokens.Verify(raw)
			if err != nil {
				return err
			}

			c.Set(ContextKeyUsername, identity.Username)
			c.Set(ContextKeyRole, identity.Role)
			return next(c)
		}
	}
}

// CallerIdentity reads the identity set by the middleware, falling back to
// the query parameters when auth is disabled.
func CallerIdentity(c echo.Context) (username, role string) {
	if v, ok := c.Get(ContextKeyUsername).(string); ok && v != "" {
		username = v
	} else {
		username = c.QueryParam("username")
	}
	if v, ok := c.Get(ContextKeyRole).(string); ok && v != "" {
		role = v
	} else {
		role = c.QueryParam("role")
		if role == "" {
			role = "customer"
		}
	}
	return username, role
}
