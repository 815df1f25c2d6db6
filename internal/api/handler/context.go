package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

// requireSession returns the caller's session or ErrUnauthenticated. The
// route guards already enforce this; handlers check again before trusting
// session fields.
func requireSession(c echo.Context) (*domain.Session, error) {
	s := session.Current(c)
	if s == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s, nil
}

// bindAndValidate binds the request into req and runs the registered
// validator. Bind failures become validation errors.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("body", "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
