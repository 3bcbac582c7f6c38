package company

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
)

// Module wires HTTP company handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, auth *middleware.Auth) {
		Register(e, h, auth)
	}),
)
