package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// UserPatch updates only the non-nil fields.
type UserPatch struct {
	Fullname *string
	Email    *string
	Username *string
	Role     *string
	IsActive *bool
}

// UserService is the admin view over local accounts.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// DashboardCounts backs the admin dashboard tiles.
type DashboardCounts struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalOrders   int64 `json:"totalOrders"`
	TotalUsers    int64 `json:"totalUsers"`
}

type DashboardService interface {
	Counts(ctx context.Context) (*DashboardCounts, error)
}
