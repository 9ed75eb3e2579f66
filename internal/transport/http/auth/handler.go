package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/pastry/internal/auth"
	"github.com/Additional-Code/pastry/internal/config"
	"github.com/Additional-Code/pastry/internal/dto"
	"github.com/Additional-Code/pastry/internal/presentation/http/response"
	"github.com/Additional-Code/pastry/pkg/errorbank"
)

// Handler exposes the login endpoint.
type Handler struct {
	enabled     bool
	credentials auth.CredentialsProvider
	tokens      *auth.TokenManager
}

// NewHandler constructs the auth Handler.
func NewHandler(cfg config.Config, credentials auth.CredentialsProvider, tokens *auth.TokenManager) *Handler {
	return &Handler{
		enabled:     cfg.Auth.Enabled,
		credentials: credentials,
		tokens:      tokens,
	}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.POST("/login", h.login)
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	if !h.enabled {
		return b.WithError(errorbank.Unavailable("authentication is not enabled")).Build()
	}

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Role == "" {
		payload.Role = "customer"
	}

	identity, err := h.credentials.Authenticate(payload.Username, payload.Password, payload.Role)
	if err != nil {
		return b.WithError(err).Build()
	}

	token, err := h.tokens.Issue(identity)
	if err != nil {
		return b.WithError(errorbank.Internal("failed to issue token", errorbank.WithCause(err))).Build()
	}

	return b.WithData(dto.LoginResponse{
		AccessToken: token,
		Username:    identity.Username,
		Role:        identity.Role,
	}).Build()
}
