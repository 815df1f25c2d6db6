package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
)

// UserResolver re-reads the account behind a session. It returns nil, nil
// when the account is gone or deactivated.
type UserResolver interface {
	CurrentUser(ctx context.Context, s *domain.Session) (*domain.CurrentUser, error)
}

// currentUser resolves the caller against the account store, so role
// changes and deactivation apply to sessions that already exist.
func currentUser(c echo.Context, users UserResolver) (*domain.CurrentUser, error) {
	s := session.Current(c)
	if s == nil {
		return nil, nil
	}
	return users.CurrentUser(c.Request().Context(), s)
}

// RequireAPISession rejects anonymous API calls with 401.
func RequireAPISession(users UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := currentUser(c, users)
			if err != nil {
				return err
			}
			if u == nil {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RequirePageSession sends anonymous page requests to loginPath, carrying
// the requested path in the redirect query parameter.
func RequirePageSession(users UserResolver, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, err := currentUser(c, users)
			if err != nil {
				return err
			}
			if u == nil {
				target := loginPath + "?redirect=" + c.Request().URL.EscapedPath()
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}
