package ports

import (
	"context"
	"time"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// SessionStore holds server-side session state keyed by an opaque token.
type SessionStore interface {
	Save(ctx context.Context, token string, s domain.Session, ttl time.Duration) error
	// Find returns domain.ErrSessionNotFound for unknown or expired tokens.
	Find(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}
