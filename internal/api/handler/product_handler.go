package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

// ProductHandler serves the product routes. The catalog binds it to the
// local service and the gateway binds it to the remote catalog client.
type ProductHandler struct {
	products ports.ProductService
}

func NewProductHandler(products ports.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Slug        string          `json:"slug" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	StockCount  int             `json:"stockCount" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Tags        []string        `json:"tags" validate:"max=20,dive,max=50"`
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Slug        *string          `json:"slug,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	StockCount  *int             `json:"stockCount,omitempty" validate:"omitempty,gte=0"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Tags        []string         `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// Search runs a structured product search.
//
// @Summary      Search products
// @Tags         products
// @Produce      json
// @Param        text      query     string  false  "Full-text term"
// @Param        category  query     string  false  "Exact category"
// @Param        tags      query     string  false  "Comma-separated tags"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size"
// @Param        sort      query     string  false  "Sort field"
// @Param        order     query     string  false  "asc or desc"
// @Success      200       {object}  domain.ProductPage
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string  "No products found matching the search criteria"
// @Router       /products [get]
func (h *ProductHandler) Search(c echo.Context) error {
	q, err := ParseProductQuery(c)
	if err != nil {
		return err
	}
	page, err := h.products.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a product by id or slug.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id or slug"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.products.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product to the catalog.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "Product with the same slug already exists"
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.products.Create(c.Request().Context(), &domain.Product{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		StockCount:  req.StockCount,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update applies a partial product update.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string  "No valid fields provided to update"
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.products.Update(c.Request().Context(), c.Param("id"), domain.ProductPatch{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		StockCount:  req.StockCount,
		Category:    req.Category,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete soft-deletes a product.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.products.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ParseProductQuery reads the search parameters from the query string.
func ParseProductQuery(c echo.Context) (domain.ProductQuery, error) {
	q := domain.ProductQuery{
		Text:      strings.TrimSpace(c.QueryParam("text")),
		Category:  strings.TrimSpace(c.QueryParam("category")),
		SortField: c.QueryParam("sort"),
		SortOrder: domain.SortOrder(strings.ToLower(c.QueryParam("order"))),
	}
	if raw := c.QueryParam("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}

	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return q, err
	}
	return q, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrValidation, name)
	}
	return n, nil
}
