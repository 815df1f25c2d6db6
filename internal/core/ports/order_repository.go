package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// OrderRepository persists orders and hands out order sequence numbers.
type OrderRepository interface {
	// NextSequence atomically increments and returns the order counter.
	NextSequence(ctx context.Context) (int64, error)
	// Create inserts o. It returns domain.ErrDuplicateOrderID when o.ID is
	// already taken.
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	Delete(ctx context.Context, orderID string) error
	Count(ctx context.Context) (int64, error)
}
