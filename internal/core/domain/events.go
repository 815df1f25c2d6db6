package domain

import "time"

type OrderEventType string

const (
	OrderCreated       OrderEventType = "order.created"
	OrderStatusChanged OrderEventType = "order.status_changed"
	OrderDeleted       OrderEventType = "order.deleted"
)

// OrderEvent is published after an order changes.
type OrderEvent struct {
	Type        OrderEventType `json:"type"`
	OrderID     string         `json:"orderId"`
	Status      OrderStatus    `json:"status,omitempty"`
	TotalAmount float64        `json:"totalAmount,omitempty"`
	OccurredAt  time.Time      `json:"occurredAt"`
}
