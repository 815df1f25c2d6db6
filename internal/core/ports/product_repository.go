package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// ProductRepository persists catalog entries.
type ProductRepository interface {
	// Create inserts p and sets p.ID.
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns every product, newest first.
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
