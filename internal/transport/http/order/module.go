package order

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/pastry/internal/auth"
	"github.com/Additional-Code/pastry/internal/config"
)

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, cfg config.Config, tokens *auth.TokenManager) {
		Register(e, h, auth.Middleware(cfg, tokens))
	}),
)
