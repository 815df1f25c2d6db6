package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Fullname != nil {
		v := strings.TrimSpace(*patch.Fullname)
		if v == "" {
			return nil, domain.Invalid("fullname", "fullname cannot be empty")
		}
		user.Fullname = v
	}
	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		if v == "" {
			return nil, domain.Invalid("username", "username cannot be empty")
		}
		user.Username = v
	}
	if patch.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*patch.Email))
		if _, err := mail.ParseAddress(v); err != nil {
			return nil, domain.Invalid("email", "email must be a valid email")
		}
		user.Email = v
	}
	if patch.Role != nil {
		if !domain.ValidRole(*patch.Role) {
			return nil, domain.Invalid("role", "role must be one of: admin, user")
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// DashboardService aggregates record counts for the admin dashboard.
type DashboardService struct {
	products ports.ProductRepository
	orders   ports.OrderRepository
	users    ports.UserRepository
}

func NewDashboardService(products ports.ProductRepository, orders ports.OrderRepository, users ports.UserRepository) *DashboardService {
	return &DashboardService{products: products, orders: orders, users: users}
}

func (s *DashboardService) Counts(ctx context.Context) (*ports.DashboardCounts, error) {
	var counts ports.DashboardCounts
	var err error
	if counts.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if counts.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if counts.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	return &counts, nil
}
