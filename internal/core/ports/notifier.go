package ports

import (
	"context"

	"github.com/artistgrade/storefront/internal/core/domain"
)

// Notifier sends outbound confirmation messages.
type Notifier interface {
	SendRequestConfirmation(ctx context.Context, req *domain.CustomRequest) error
	SendOrderReceipt(ctx context.Context, order *domain.Order) error
}

type NotificationKind string

const (
	NotifyRequestConfirmation NotificationKind = "request_confirmation"
	NotifyOrderReceipt        NotificationKind = "order_receipt"
)

// Notification is a unit of work for the NotificationDispatcher. Exactly one
// of Order or Request is set, matching Kind.
type Notification struct {
	Kind    NotificationKind
	Order   *domain.Order
	Request *domain.CustomRequest
}

// Recipient is the address the notification goes to.
func (n Notification) Recipient() string {
	switch {
	case n.Order != nil:
		return n.Order.Email
	case n.Request != nil:
		return n.Request.Email
	}
	return ""
}

// NotificationDispatcher queues notifications for asynchronous delivery.
// Dispatch never blocks and never reports delivery failures to the caller.
type NotificationDispatcher interface {
	Dispatch(n Notification)
}
