package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type OrderHandler struct {
	orderService ports.OrderService
}

func NewOrderHandler(orderService ports.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places an order for the current user.
//
// @Summary      Create order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  orderResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /orders/new [post]
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.Create(c.Request().Context(), userID, toCreateOrderInput(req))
	if err != nil {
		return err
	}

	metrics.OrdersCreatedTotal.WithLabelValues(order.PaymentMethod).Inc()
	return c.JSON(http.StatusCreated, orderResponse{Order: order})
}

// MyOrders lists the orders of the current user.
//
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ordersResponse
// @Failure      401  {object}  map[string]any
// @Router       /me/orders [get]
func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.MyOrders(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// Get returns order details. Users only see their own orders; admins see all.
//
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderResponse
// @Failure      404  {object}  map[string]any
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	role, _ := c.Get(middleware.ContextRole).(string)
	if role != domain.RoleAdmin && order.UserID != userID {
		return domain.ErrOrderNotFound
	}
	return c.JSON(http.StatusOK, orderResponse{Order: order})
}

// List returns every order.
//
// @Summary      List orders
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ordersResponse
// @Failure      403  {object}  map[string]any
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.orderService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// UpdateStatus moves an order forward in fulfillment. The first move out of
// Processing deducts stock.
//
// @Summary      Update order status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Order ID"
// @Param        body  body      updateOrderStatusRequest  true  "New status"
// @Success      200   {object}  updateOrderResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /admin/orders/{id} [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.Validation("invalid payload")
	}

	// Payload validation is left to the service: a delivered order must be
	// reported as such whatever the request says.
	order, err := h.orderService.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	metrics.OrderStatusUpdatesTotal.WithLabelValues(statusLabel(req.Status), updateResult(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updateOrderResponse{Success: true, Order: order})
}

// Delete removes an order.
//
// @Summary      Delete order
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  successResponse
// @Failure      404  {object}  map[string]any
// @Router       /admin/orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.orderService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// statusLabel keeps the metric cardinality bounded.
func statusLabel(status string) string {
	if domain.OrderStatus(status).Valid() {
		return status
	}
	return "invalid"
}

func updateResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrOrderDelivered):
		return "delivered"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
