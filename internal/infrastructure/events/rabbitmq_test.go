package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/streadway/amqp"

	"github.com/artistgrade/storefront/internal/core/domain"
)

func TestBuildMessage(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := domain.OrderEvent{
		Type:        domain.OrderCreated,
		OrderID:     "ORD007",
		Status:      domain.StatusPending,
		TotalAmount: 42.5,
		OccurredAt:  at,
	}

	msg, err := buildMessage(event)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}

	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected content type or delivery mode: %q %d", msg.ContentType, msg.DeliveryMode)
	}
	if msg.Type != "order.created" || !msg.Timestamp.Equal(at) {
		t.Fatalf("unexpected type or timestamp: %q %v", msg.Type, msg.Timestamp)
	}
	if msg.MessageId == "" {
		t.Fatalf("expected a message id")
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got["orderId"] != "ORD007" || got["type"] != "order.created" || got["totalAmount"] != 42.5 {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestBuildMessage_StampsMissingTime(t *testing.T) {
	msg, err := buildMessage(domain.OrderEvent{Type: domain.OrderDeleted, OrderID: "ORD001"})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	if msg.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be stamped")
	}
}

func TestRoutingKeyIsEventType(t *testing.T) {
	if got := routingKey(domain.OrderEvent{Type: domain.OrderStatusChanged}); got != "order.status_changed" {
		t.Fatalf("unexpected routing key %q", got)
	}
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	if err := p.Publish(context.Background(), domain.OrderEvent{Type: domain.OrderCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
