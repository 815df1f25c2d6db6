package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

// maxOrderIDAttempts bounds retries when an allocated order id collides with
// an existing order (e.g. after the counter document was reset).
const maxOrderIDAttempts = 3

type OrderService struct {
	repo      ports.OrderRepository
	notifier  ports.NotificationDispatcher
	publisher ports.OrderEventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewOrderService(
	repo ports.OrderRepository,
	notifier ports.NotificationDispatcher,
	publisher ports.OrderEventPublisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates a checkout and persists it under the next ORDnnn id.
// If an idempotency key is provided and already seen, the earlier order id is
// returned without side effects.
func (s *OrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, in.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("order_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateOrderResult{OrderID: existing.ID, AlreadyExisted: true}, nil
		}
		if err != nil && !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, fmt.Errorf("create order: idempotency lookup: %w", err)
		}
	}

	order := &domain.Order{
		UserID:         in.UserID,
		Customer:       normalizeCustomer(in.Customer),
		TransactionID:  strings.TrimSpace(in.TransactionID),
		Items:          append([]domain.LineItem(nil), in.Items...),
		TotalAmount:    in.TotalAmount,
		Status:         domain.StatusPending,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      s.now(),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.insertWithNextID(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			// Lost a race against a concurrent submit with the same key.
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if findErr == nil {
				return &ports.CreateOrderResult{OrderID: existing.ID, AlreadyExisted: true}, nil
			}
		}
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Int("items", len(order.Items)).
		Float64("total", order.TotalAmount).
		Msg("order created")

	s.publish(ctx, domain.OrderEvent{
		Type:        domain.OrderCreated,
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.CreatedAt,
	})
	s.notifier.Dispatch(ports.Notification{Kind: ports.NotifyOrderReceipt, Order: order})

	return &ports.CreateOrderResult{OrderID: order.ID}, nil
}

// insertWithNextID allocates a sequence number from the atomic counter and
// inserts the order, retrying with a fresh number on an id collision.
func (s *OrderService) insertWithNextID(ctx context.Context, order *domain.Order) error {
	for attempt := 1; ; attempt++ {
		seq, err := s.repo.NextSequence(ctx)
		if err != nil {
			return fmt.Errorf("create order: next sequence: %w", err)
		}
		order.ID = domain.FormatOrderID(seq)

		err = s.repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateOrderID) || attempt >= maxOrderIDAttempts {
			s.logger.Error().Err(err).Str("order_id", order.ID).Int("attempt", attempt).Msg("failed to create order")
			return fmt.Errorf("create order: %w", err)
		}
		s.logger.Warn().Str("order_id", order.ID).Int("attempt", attempt).Msg("order id collision, retrying")
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.FindByID(ctx, strings.TrimSpace(orderID))
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// UpdateStatus writes any of the enumerated statuses regardless of the
// current one.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, orderID, st); err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", orderID).Str("status", string(st)).Msg("order status updated")
	s.publish(ctx, domain.OrderEvent{
		Type:       domain.OrderStatusChanged,
		OrderID:    orderID,
		Status:     st,
		OccurredAt: s.now(),
	})
	return order, nil
}

// DeleteOrder hard-deletes an order. Nothing else is touched.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info().Str("order_id", orderID).Msg("order deleted")
	s.publish(ctx, domain.OrderEvent{Type: domain.OrderDeleted, OrderID: orderID, OccurredAt: s.now()})
	return nil
}

// publish is best effort: an unreachable broker never fails an order call.
func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", event.OrderID).Str("event", string(event.Type)).Msg("failed to publish order event")
	}
}

func normalizeCustomer(c domain.Customer) domain.Customer {
	return domain.Customer{
		FullName: strings.TrimSpace(c.FullName),
		Email:    strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:    strings.TrimSpace(c.Phone),
		Address:  strings.TrimSpace(c.Address),
		City:     strings.TrimSpace(c.City),
		State:    strings.TrimSpace(c.State),
		Zip:      strings.TrimSpace(c.Zip),
	}
}
