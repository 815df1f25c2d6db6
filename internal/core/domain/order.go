package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. Any status may be written
// at any time; there is no transition table.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCanceled  OrderStatus = "Canceled"
)

// ParseOrderStatus accepts one of the enumerated statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.TrimSpace(s)); st {
	case StatusPending, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", Invalid("status", fmt.Sprintf("status must be one of: %s, %s, %s", StatusPending, StatusCompleted, StatusCanceled))
}

// FormatOrderID renders a sequence number as ORD001, ORD002, ...
func FormatOrderID(seq int64) string {
	return fmt.Sprintf("ORD%03d", seq)
}

// Customer holds the contact and shipping details captured at checkout.
type Customer struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
}

// LineItem is a product snapshot taken at checkout time.
type LineItem struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the aggregate persisted for each checkout. Only Status changes
// after creation.
type Order struct {
	ID     string `json:"orderId"`
	UserID string `json:"userId,omitempty"`
	Customer
	TransactionID  string      `json:"transactionId"`
	Items          []LineItem  `json:"cartItems"`
	TotalAmount    float64     `json:"totalAmount"`
	Status         OrderStatus `json:"status"`
	IdempotencyKey string      `json:"-"`
	CreatedAt      time.Time   `json:"date"`
}

// SumLineItems returns the sum of price*quantity over items.
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Validate checks the checkout payload: customer fields, transaction
// reference, line items and that the total matches the line items to the cent.
func (o *Order) Validate() error {
	required := []struct{ field, value string }{
		{"fullName", o.FullName},
		{"email", o.Email},
		{"phone", o.Phone},
		{"address", o.Address},
		{"city", o.City},
		{"state", o.State},
		{"zip", o.Zip},
		{"transactionId", o.TransactionID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Invalid(r.field, r.field+" is required")
		}
	}

	if len(o.Items) == 0 {
		return Invalid("cartItems", "order must contain at least one item")
	}
	for i, it := range o.Items {
		if strings.TrimSpace(it.Name) == "" {
			return Invalid("cartItems", fmt.Sprintf("cartItems[%d].name is required", i))
		}
		if !IsFinite(it.Price) || it.Price < 0 {
			return Invalid("cartItems", fmt.Sprintf("cartItems[%d].price must be non-negative", i))
		}
		if it.Quantity < 1 {
			return Invalid("cartItems", fmt.Sprintf("cartItems[%d].quantity must be at least 1", i))
		}
	}

	if !IsFinite(o.TotalAmount) {
		return Invalid("totalAmount", "totalAmount must be a finite number")
	}
	want := SumLineItems(o.Items).Round(2)
	got := decimal.NewFromFloat(o.TotalAmount).Round(2)
	if !got.Equal(want) {
		return Invalid("totalAmount", fmt.Sprintf("totalAmount %s does not match line items total %s", got.StringFixed(2), want.StringFixed(2)))
	}
	return nil
}
