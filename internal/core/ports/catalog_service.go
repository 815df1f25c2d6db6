package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// ProductInput is a full product form. Image is optional.
type ProductInput struct {
	Name     string
	Category string
	Price    *float64
	Stock    *int
	Image    *BlobUpload
}

// ProductPatch updates only the non-nil fields.
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Stock    *int
	Image    *BlobUpload
}

// CatalogService manages products and their images.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
