package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artistgrade/storefront/internal/api/session"
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const checkoutBody = `{
	"fullName": "Ada Lovelace",
	"email": "ada@example.com",
	"phone": "555-0100",
	"address": "1 Analytical Way",
	"city": "London",
	"state": "LDN",
	"zip": "N1",
	"transactionId": "txn_123",
	"cartItems": [
		{"productId": "p1", "name": "Print", "price": 12.5, "quantity": 2},
		{"productId": "p2", "name": "Frame", "price": 5, "quantity": 1}
	],
	"totalAmount": 30
}`

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(session.WithSession(req.Context(), &domain.Session{UserID: userID, Role: domain.RoleUser}))
}

func TestOrderHandler_Create(t *testing.T) {
	e := newEcho()
	var got ports.CreateOrderInput
	stub := &stubOrderService{
		createFn: func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
			got = in
			return &ports.CreateOrderResult{OrderID: "ORD001"}, nil
		},
	}
	handler := NewOrderHandler(stub)

	req := withUser(jsonRequest(http.MethodPost, "/api/orders", checkoutBody), "u1")
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()

	if err := handler.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp createOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.OrderID != "ORD001" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if got.UserID != "u1" || got.IdempotencyKey != "key-1" || got.TransactionID != "txn_123" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "Print" || got.Items[0].Quantity != 2 {
		t.Fatalf("line items not mapped in order: %+v", got.Items)
	}
	if got.Customer.FullName != "Ada Lovelace" || got.Customer.Zip != "N1" {
		t.Fatalf("customer not mapped: %+v", got.Customer)
	}
}

func TestOrderHandler_Create_Replay(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		createFn: func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
			return &ports.CreateOrderResult{OrderID: "ORD004", AlreadyExisted: true}, nil
		},
	}
	handler := NewOrderHandler(stub)

	rec := httptest.NewRecorder()
	req := withUser(jsonRequest(http.MethodPost, "/api/orders", checkoutBody), "u1")
	if err := handler.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestOrderHandler_Create_Unauthenticated(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		createFn: func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewOrderHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/orders", checkoutBody), httptest.NewRecorder())
	if err := handler.Create(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"no items", `{"fullName":"A","email":"a@example.com","phone":"1","address":"x","city":"c","state":"s","zip":"z","transactionId":"t","cartItems":[],"totalAmount":0}`, "cartItems"},
		{"missing zip", `{"fullName":"A","email":"a@example.com","phone":"1","address":"x","city":"c","state":"s","transactionId":"t","cartItems":[{"name":"P","price":1,"quantity":1}],"totalAmount":1}`, "zip"},
		{"bad email", `{"fullName":"A","email":"nope","phone":"1","address":"x","city":"c","state":"s","zip":"z","transactionId":"t","cartItems":[{"name":"P","price":1,"quantity":1}],"totalAmount":1}`, "email"},
		{"zero quantity", `{"fullName":"A","email":"a@example.com","phone":"1","address":"x","city":"c","state":"s","zip":"z","transactionId":"t","cartItems":[{"name":"P","price":1,"quantity":0}],"totalAmount":0}`, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubOrderService{
				createFn: func(ctx context.Context, in ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}
			handler := NewOrderHandler(stub)

			req := withUser(jsonRequest(http.MethodPost, "/api/orders", tt.body), "u1")
			err := handler.Create(e.NewContext(req, httptest.NewRecorder()))

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("expected field %q, got %q (%s)", tt.field, ve.Field, ve.Message)
			}
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	e := newEcho()
	stub := &stubOrderService{
		statusFn: func(ctx context.Context, id, status string) (*domain.Order, error) {
			if id != "ORD002" || status != "Completed" {
				t.Fatalf("unexpected args: %s %s", id, status)
			}
			return &domain.Order{ID: id, Status: domain.StatusCompleted}, nil
		},
	}
	handler := NewOrderHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/orders/ORD002/status", `{"status":"Completed"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("ORD002")

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	handler := NewOrderHandler(&stubOrderService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/orders/ORD999", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("ORD999")

	if err := handler.Get(c); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
