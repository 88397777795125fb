package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/ports"
)

type CartHandler struct {
	carts ports.CartService
}

func NewCartHandler(carts ports.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type setQuantityRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
}

// SetQuantity sets the quantity of one product in the owner's cart. A
// quantity of zero removes the line.
//
// @Summary      Set quantity of a product
// @Tags         carts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Owner id"
// @Param        body  body      setQuantityRequest  true  "Product and quantity"
// @Success      200   {object}  domain.Cart
// @Failure      400   {object}  map[string]string  "Not enough products in stock"
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /carts/{id} [patch]
func (h *CartHandler) SetQuantity(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	var req setQuantityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cart, err := h.carts.SetQuantity(c.Request().Context(), owner, req.ProductID, *req.Quantity)
	metrics.CartUpdatesTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// Read returns the owner's cart.
//
// @Summary      Get the full cart
// @Tags         carts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Owner id"
// @Success      200  {object}  domain.Cart
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /carts/{id} [get]
func (h *CartHandler) Read(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	cart, err := h.carts.Read(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

// Delete removes the whole cart.
//
// @Summary      Remove the whole cart
// @Tags         carts
// @Security     BearerAuth
// @Param        id   path  int  true  "Owner id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /carts/{id} [delete]
func (h *CartHandler) Delete(c echo.Context) error {
	owner, err := ctxOwner(c)
	if err != nil {
		return err
	}
	if err := h.carts.Delete(c.Request().Context(), owner); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
