package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/artistgrade/storefront/internal/api/metrics"
	"github.com/artistgrade/storefront/internal/core/domain"
	"github.com/artistgrade/storefront/internal/core/ports"
)

const idempotencyHeader = "Idempotency-Key"

// OrderHandler handles checkout and order administration.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /api/orders.
//
// @Summary      Submit a checkout
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string              false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createOrderRequest  true   "Checkout payload"
// @Success      201              {object}  createOrderResponse
// @Success      200              {object}  createOrderResponse "Replayed submission"
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      500              {object}  map[string]string
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	sess, err := requireSession(c)
	if err != nil {
		metrics.CheckoutRejectedTotal.WithLabelValues("unauthenticated").Inc()
		return err
	}

	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.CheckoutRejectedTotal.WithLabelValues("validation").Inc()
		return err
	}

	result, err := h.service.CreateOrder(c.Request().Context(),
		toCreateOrderInput(req, sess.UserID, c.Request().Header.Get(idempotencyHeader)))
	if err != nil {
		reason := "error"
		if errors.Is(err, domain.ErrValidation) {
			reason = "validation"
		}
		metrics.CheckoutRejectedTotal.WithLabelValues(reason).Inc()
		return err
	}

	status, label := http.StatusCreated, "created"
	if result.AlreadyExisted {
		status, label = http.StatusOK, "replayed"
	}
	metrics.OrdersCreatedTotal.WithLabelValues(label).Inc()
	return c.JSON(status, createOrderResponse{Success: true, OrderID: result.OrderID})
}

// List handles GET /api/orders.
//
// @Summary      List orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200  {array}   domain.Order
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.service.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// Get handles GET /api/orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id (e.g. ORD001)"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  map[string]string
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PUT /api/orders/:id/status.
//
// @Summary      Set an order's status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Order id"
// @Param        body  body      updateStatusRequest  true  "Pending, Completed or Canceled"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	metrics.OrderStatusUpdatesTotal.WithLabelValues(string(order.Status)).Inc()
	return c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /api/orders/:id.
//
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Order deleted successfully"})
}
