package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// RBAC enforces role-based access control on the caller's current role.
// Anonymous callers get ErrUnauthenticated, others ErrForbidden.
func RBAC(users UserResolver, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := currentUser(c, users)
			if err != nil {
				return err
			}
			if u == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[u.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
