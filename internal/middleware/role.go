package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
)

// RequireSystemRole allows only the listed roles. An unknown role panics at
// route registration so a misconfigured server never starts.
func RequireSystemRole(roles ...model.Role) echo.MiddlewareFunc {
	if len(roles) == 0 {
		panic("RequireSystemRole: no roles given")
	}
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("RequireSystemRole: invalid role %q", r))
		}
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperrors.Unauthorized("Unauthorized")
			}
			if !allowed[user.SystemRole] {
				return apperrors.Forbidden("Forbidden")
			}
			return next(c)
		}
	}
}
