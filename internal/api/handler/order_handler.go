package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry a reservation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type shippingRequest struct {
	RecipientName string `json:"recipientName" validate:"required,max=200"`
	Address       string `json:"address" validate:"required,max=500"`
	City          string `json:"city" validate:"required,max=100"`
	PostalCode    string `json:"postalCode" validate:"required,max=20"`
	Phone         string `json:"phone" validate:"max=30"`
}

// Reserve turns the owner's cart into an order, reserving stock for every line.
//
// @Summary      Reserve a cart to order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      int     false  "Owner id (admins or self)"
// @Param        Idempotency-Key  header    string  false  "Retry key"
// @Success      201              {object}  domain.Order
// @Failure      400              {object}  map[string]string  "Cart is empty or not enough stock"
// @Failure      401              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Failure      409              {object}  map[string]string  "An open order already exists"
// @Router       /orders/reserve/{id} [post]
func (h *OrderHandler) Reserve(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Reserve(c.Request().Context(), owner, c.Request().Header.Get(HeaderIdempotencyKey))
	metrics.OrderTransitionsTotal.WithLabelValues("reserve", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// Shipping attaches delivery details to the open order.
//
// @Summary      Set shipping info of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              false  "Owner id (admins or self)"
// @Param        body  body      shippingRequest  true   "Shipping info"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /orders/shipping/{id} [post]
func (h *OrderHandler) Shipping(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	var req shippingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orders.AttachShipping(c.Request().Context(), owner, domain.ShippingInfo{
		RecipientName: req.RecipientName,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Phone:         req.Phone,
	})
	metrics.OrderTransitionsTotal.WithLabelValues("shipping", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Read returns the owner's most recent order.
//
// @Summary      Get status of an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  false  "Owner id (admins or self)"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id} [get]
func (h *OrderHandler) Read(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Read(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Cancel cancels the open order and releases its stock.
//
// @Summary      Cancel an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  false  "Owner id (admins or self)"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Cancel(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Cancel(c.Request().Context(), owner)
	metrics.OrderTransitionsTotal.WithLabelValues("cancel", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// NeedingAttention lists the orders waiting to be shipped.
//
// @Summary      List orders that need admin attention
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Order
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /orders/admin [get]
func (h *OrderHandler) NeedingAttention(c echo.Context) error {
	orders, err := h.orders.NeedingAttention(c.Request().Context())
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

// Ship marks the owner's order as shipped.
//
// @Summary      Ship an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Owner id"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  map[string]string  "Shipping information is required"
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /orders/admin/{id}/ship [post]
func (h *OrderHandler) Ship(c echo.Context) error {
	owner, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.orders.Ship(c.Request().Context(), owner)
	metrics.OrderTransitionsTotal.WithLabelValues("ship", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
