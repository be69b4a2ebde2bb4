package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/core/domain"
	"github.com/adminhub/user-accounts/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextUserID   = "user_id"
	ContextUserName = "user_name"
)

var errMissingAuthorization = &domain.Error{
	Kind:    domain.KindUnauthenticated,
	Message: "missing authorization header",
}

// Auth verifies the bearer token and injects the caller's identity into context.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return errMissingAuthorization
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrInvalidToken
			}

			claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.ErrInvalidToken
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserName, claims.UserName)

			return next(c)
		}
	}
}
