package handler

import (
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

type cartItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
}

// createOrderRequest is the checkout payload.
type createOrderRequest struct {
	FullName      string            `json:"fullName" validate:"required"`
	Email         string            `json:"email" validate:"required,email"`
	Phone         string            `json:"phone" validate:"required"`
	Address       string            `json:"address" validate:"required"`
	City          string            `json:"city" validate:"required"`
	State         string            `json:"state" validate:"required"`
	Zip           string            `json:"zip" validate:"required"`
	TransactionID string            `json:"transactionId" validate:"required"`
	CartItems     []cartItemRequest `json:"cartItems" validate:"required,min=1,dive"`
	TotalAmount   float64           `json:"totalAmount" validate:"gte=0"`
}

type createOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func toCreateOrderInput(req createOrderRequest, userID, idempotencyKey string) ports.CreateOrderInput {
	items := make([]domain.LineItem, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return ports.CreateOrderInput{
		Customer: domain.Customer{
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Address:  req.Address,
			City:     req.City,
			State:    req.State,
			Zip:      req.Zip,
		},
		TransactionID:  req.TransactionID,
		Items:          items,
		TotalAmount:    req.TotalAmount,
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
	}
}
