package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// UserRepository persists local accounts. Username and email are unique; a
// write that would duplicate either returns domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// IdentityRepository persists accounts linked to an identity provider.
type IdentityRepository interface {
	// FindOrCreate returns the identity for (profile.Provider, profile.Subject),
	// creating it atomically on first sight.
	FindOrCreate(ctx context.Context, profile domain.ProviderProfile) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
}
