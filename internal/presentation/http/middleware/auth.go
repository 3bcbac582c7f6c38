package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/response"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
	"github.com/Additional-Code/buyerdesk/pkg/token"
)

const claimsKey = "auth.claims"

// Auth verifies bearer tokens and enforces roles.
type Auth struct {
	secret    string
	issuer    string
	adminRole string
}

// NewAuth builds the auth middleware set from configuration.
func NewAuth(cfg config.Config) *Auth {
	return &Auth{secret: cfg.Auth.JWTSecret, issuer: cfg.Auth.Issuer, adminRole: cfg.Auth.AdminRole}
}

// Guard rejects requests without a valid bearer token and stores the
// caller claims on the context.
func (a *Auth) Guard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			claims, err := token.Parse(a.secret, a.issuer, strings.TrimSpace(raw))
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("invalid token", errorbank.WithCause(err))).Build()
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole allows only callers holding one of roles. Must run after Guard.
func (a *Auth) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := Identity(c)
			if claims == nil {
				return response.New(c).WithError(errorbank.Unauthorized("missing identity")).Build()
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return response.New(c).WithError(errorbank.Forbidden("insufficient role")).Build()
		}
	}
}

// Admin restricts a route to the configured administrator role.
func (a *Auth) Admin() echo.MiddlewareFunc {
	return a.RequireRole(a.adminRole)
}

// Identity returns the verified caller, or nil outside Guard.
func Identity(c echo.Context) *token.Claims {
	claims, _ := c.Get(claimsKey).(*token.Claims)
	return claims
}

// UserID returns the verified caller id, or "" outside Guard.
func UserID(c echo.Context) string {
	if claims := Identity(c); claims != nil {
		return claims.UserID
	}
	return ""
}
