package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/core/domain"
)

// RoleParam rejects requests whose path parameter name is not one of roles.
func RoleParam(name string, roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := allowed[c.Param(name)]; !ok {
				return domain.ErrInvalidRole
			}
			return next(c)
		}
	}
}
