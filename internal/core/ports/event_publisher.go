package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// OrderEventPublisher announces order changes to other systems.
type OrderEventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
