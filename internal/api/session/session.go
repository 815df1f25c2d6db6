// Package session binds server-side session state to a signed browser
// cookie. The cookie only carries an opaque token; the session itself lives
// in a ports.SessionStore.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const (
	CookieName = "storefront_session"
	tokenKey   = "sid"
	tokenBytes = 32
)

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session resolved by Manager.Middleware, or nil for
// anonymous requests.
func FromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(ctxKey{}).(*domain.Session)
	return s
}

// Current is FromContext for an echo request.
func Current(c echo.Context) *domain.Session {
	return FromContext(c.Request().Context())
}

// NewCookieStore builds the signed cookie store shared by the session
// manager and the identity provider round trip.
func NewCookieStore(secret string, secure bool, ttl time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type Manager struct {
	store   ports.SessionStore
	cookies sessions.Store
	ttl     time.Duration
	log     zerolog.Logger
}

func NewManager(store ports.SessionStore, cookies sessions.Store, ttl time.Duration, log zerolog.Logger) *Manager {
	return &Manager{store: store, cookies: cookies, ttl: ttl, log: log}
}

// Establish stores s under a fresh token and writes the session cookie.
// Any session the request already carried is revoked first.
func (m *Manager) Establish(c echo.Context, s domain.Session) error {
	req := c.Request()
	ctx := req.Context()

	if old := m.token(req); old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			m.log.Warn().Err(err).Msg("revoke previous session")
		}
	}

	token, err := newToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.ExpiresAt = now.Add(m.ttl)
	if err := m.store.Save(ctx, token, s, m.ttl); err != nil {
		return err
	}

	cs, _ := m.cookies.Get(req, CookieName)
	cs.Values[tokenKey] = token
	cs.Options.MaxAge = int(m.ttl.Seconds())
	if err := cs.Save(req, c.Response()); err != nil {
		return fmt.Errorf("write session cookie: %w", err)
	}

	c.SetRequest(req.WithContext(WithSession(ctx, &s)))
	return nil
}

// Destroy deletes the stored session and expires the cookie. Calling it
// without a session is not an error.
func (m *Manager) Destroy(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	if token := m.token(req); token != "" {
		if err := m.store.Delete(ctx, token); err != nil {
			return err
		}
	}

	cs, _ := m.cookies.Get(req, CookieName)
	delete(cs.Values, tokenKey)
	cs.Options.MaxAge = -1
	if err := cs.Save(req, c.Response()); err != nil {
		return fmt.Errorf("expire session cookie: %w", err)
	}

	c.SetRequest(req.WithContext(WithSession(ctx, nil)))
	return nil
}

// Middleware resolves the session cookie into the request context. Requests
// without a valid session continue anonymously.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			token := m.token(req)
			if token == "" {
				return next(c)
			}

			s, err := m.store.Find(req.Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					m.log.Error().Err(err).Msg("session lookup failed")
				}
				return next(c)
			}

			c.SetRequest(req.WithContext(WithSession(req.Context(), s)))
			return next(c)
		}
	}
}

// token reads the opaque token from the signed cookie. A missing or
// tampered cookie yields "".
func (m *Manager) token(r *http.Request) string {
	cs, err := m.cookies.Get(r, CookieName)
	if err != nil || cs == nil {
		return ""
	}
	token, _ := cs.Values[tokenKey].(string)
	return token
}

func newToken() (string, error) {
	raw := securecookie.GenerateRandomKey(tokenBytes)
	if raw == nil {
		return "", errors.New("generate session token")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
