package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// CustomRequestRepository is write-once storage for custom product requests.
type CustomRequestRepository interface {
	Create(ctx context.Context, r *domain.CustomRequest) error
}
