package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/ports"
)

// StockHandler exposes atomic stock moves. Only the catalog serves it; the
// gateway reaches it with a service token while reserving orders.
type StockHandler struct {
	stock ports.StockReserver
}

func NewStockHandler(stock ports.StockReserver) *StockHandler {
	return &StockHandler{stock: stock}
}

type stockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// Reserve decrements stock if enough is available.
//
// @Summary      Reserve stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Product id"
// @Param        body  body      stockRequest  true  "Quantity"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string  "Not enough products in stock"
// @Failure      404   {object}  map[string]string
// @Router       /products/{id}/stock/reserve [post]
func (h *StockHandler) Reserve(c echo.Context) error {
	var req stockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.stock.ReserveStock(c.Request().Context(), c.Param("id"), req.Quantity)
	metrics.StockAdjustmentsTotal.WithLabelValues("reserve", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Release returns previously reserved stock.
//
// @Summary      Release stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Product id"
// @Param        body  body      stockRequest  true  "Quantity"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  map[string]string
// @Router       /products/{id}/stock/release [post]
func (h *StockHandler) Release(c echo.Context) error {
	var req stockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.stock.ReleaseStock(c.Request().Context(), c.Param("id"), req.Quantity)
	metrics.StockAdjustmentsTotal.WithLabelValues("release", outcome(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
