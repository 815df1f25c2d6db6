package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
)

// stubResolver answers from a fixed account table keyed by user id.
type stubResolver struct {
	accounts map[string]*domain.CurrentUser
	err      error
}

func (r stubResolver) CurrentUser(_ context.Context, s *domain.Session) (*domain.CurrentUser, error) {
	if r.err != nil {
		return nil, r.err
	}
	if s == nil {
		return nil, nil
	}
	return r.accounts[s.UserID], nil
}

// accountsWithRole mirrors the session role into the account table.
func accountsWithRole(role string) stubResolver {
	return stubResolver{accounts: map[string]*domain.CurrentUser{"u1": {ID: "u1", Role: role}}}
}

func contextWithRole(e *echo.Echo, role string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(session.WithSession(req.Context(), &domain.Session{UserID: "u1", Role: role}))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRBAC_Allows(t *testing.T) {
	e := echo.New()
	c, rec := contextWithRole(e, domain.RoleAdmin)

	called := false
	mw := RBAC(accountsWithRole(domain.RoleAdmin), domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_Forbids(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRole(e, domain.RoleUser)

	mw := RBAC(accountsWithRole(domain.RoleUser), domain.RoleAdmin)
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRBAC_Anonymous(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRole(e, "")

	handler := RBAC(accountsWithRole(domain.RoleAdmin), domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRBAC_UsesAccountRoleOverSessionRole(t *testing.T) {
	e := echo.New()
	// session was issued while the account was an admin
	c, _ := contextWithRole(e, domain.RoleAdmin)

	handler := RBAC(accountsWithRole(domain.RoleUser), domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("demoted account should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRBAC_RemovedAccount(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRole(e, domain.RoleAdmin)

	handler := RBAC(stubResolver{}, domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRBAC_ResolverError(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRole(e, domain.RoleAdmin)
	boom := errors.New("mongo down")

	handler := RBAC(stubResolver{err: boom}, domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}
