package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Fullname        string
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Gender          string
}

// AuthService authenticates callers and describes the current session holder.
// Establishing and destroying the session cookie is the transport's job.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	LoginWithProvider(ctx context.Context, profile domain.ProviderProfile) (*domain.Session, error)
	// CurrentUser returns nil, nil for anonymous callers and for sessions
	// whose account no longer exists or was deactivated.
	CurrentUser(ctx context.Context, s *domain.Session) (*domain.CurrentUser, error)
}
