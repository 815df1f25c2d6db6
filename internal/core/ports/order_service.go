package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// CreateOrderInput is the checkout submission.
type CreateOrderInput struct {
	Customer       domain.Customer
	TransactionID  string
	Items          []domain.LineItem
	TotalAmount    float64
	UserID         string
	IdempotencyKey string
}

// CreateOrderResult is returned after a checkout is accepted.
type CreateOrderResult struct {
	OrderID string
	// AlreadyExisted is true when the Idempotency-Key matched an earlier order.
	AlreadyExisted bool
}

// OrderService turns checkouts into orders and administers them.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}
