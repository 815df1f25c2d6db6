package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]domain.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]domain.Session{}}
}

func (m *memoryStore) Save(_ context.Context, token string, s domain.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[token] = s
	return nil
}

func (m *memoryStore) Find(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, token)
	return nil
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func newTestManager(store *memoryStore) *Manager {
	cookies := NewCookieStore("0123456789abcdef0123456789abcdef", false, time.Hour)
	return NewManager(store, cookies, time.Hour, zerolog.Nop())
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func establish(t *testing.T, m *Manager, s domain.Session) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	if err := m.Establish(c, s); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if got := Current(c); got == nil || got.UserID != s.UserID {
		t.Fatalf("session not placed on the request context: %+v", got)
	}
	return sessionCookie(t, rec)
}

func resolve(m *Manager, ck *http.Cookie) *domain.Session {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/current_user", nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *domain.Session
	_ = m.Middleware()(func(c echo.Context) error {
		got = Current(c)
		return nil
	})(c)
	return got
}

func TestEstablishAndResolve(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)

	ck := establish(t, m, domain.Session{UserID: "u1", Name: "Ada", Role: domain.RoleUser, Provider: domain.ProviderLocal})

	if !ck.HttpOnly || ck.Path != "/" || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", ck)
	}
	if store.len() != 1 {
		t.Fatalf("expected one stored session, got %d", store.len())
	}

	got := resolve(m, ck)
	if got == nil || got.UserID != "u1" {
		t.Fatalf("expected session for u1, got %+v", got)
	}
	if got.ExpiresAt.IsZero() {
		t.Fatalf("expected expiry to be set")
	}
}

func TestEstablish_IssuesDistinctTokens(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)

	a := establish(t, m, domain.Session{UserID: "u1"})
	b := establish(t, m, domain.Session{UserID: "u2"})
	if a.Value == b.Value {
		t.Fatalf("expected distinct cookies")
	}
	if store.len() != 2 {
		t.Fatalf("expected two stored sessions, got %d", store.len())
	}
}

func TestMiddleware_Anonymous(t *testing.T) {
	m := newTestManager(newMemoryStore())
	if got := resolve(m, nil); got != nil {
		t.Fatalf("expected anonymous, got %+v", got)
	}
}

func TestMiddleware_TamperedCookie(t *testing.T) {
	m := newTestManager(newMemoryStore())
	if got := resolve(m, &http.Cookie{Name: CookieName, Value: "forged"}); got != nil {
		t.Fatalf("forged cookie resolved to %+v", got)
	}
}

func TestDestroy(t *testing.T) {
	store := newMemoryStore()
	m := newTestManager(store)
	ck := establish(t, m, domain.Session{UserID: "u1"})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := m.Destroy(c); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if store.len() != 0 {
		t.Fatalf("expected session removed from store")
	}
	if Current(c) != nil {
		t.Fatalf("expected request context cleared")
	}
	if sessionCookie(t, rec).MaxAge >= 0 {
		t.Fatalf("expected cookie to be expired")
	}

	// the old cookie no longer resolves
	if got := resolve(m, ck); got != nil {
		t.Fatalf("old cookie still resolves to %+v", got)
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	m := newTestManager(newMemoryStore())
	e := echo.New()

	for i := 0; i < 2; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/logout", nil), httptest.NewRecorder())
		if err := m.Destroy(c); err != nil {
			t.Fatalf("destroy #%d: %v", i+1, err)
		}
	}
}
