package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/adminhub/user-accounts/internal/api/middleware"
	"github.com/adminhub/user-accounts/internal/core/domain"
)

// identityFrom returns the user id bound by the Auth middleware. An empty id
// means the route was mounted without Auth, which is treated as unauthenticated.
func identityFrom(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	if id == "" {
		return "", domain.ErrInvalidToken
	}
	return id, nil
}
