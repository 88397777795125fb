package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/middleware"
	"github.com/storefront/commerce/internal/core/domain"
)

// ctxOwner returns the owner id resolved by the policy middleware. Routes
// registered without an owned policy fall back to the caller's own id.
func ctxOwner(c echo.Context) (int64, error) {
	if id, ok := middleware.OwnerID(c); ok {
		return id, nil
	}
	if claims := middleware.Claims(c); claims != nil {
		return claims.ID, nil
	}
	return 0, domain.ErrUnauthenticated
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	return c.Validate(req)
}

// outcome is the metric label for the result of a service call.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := domain.Code(err); code != "" {
		return code
	}
	return "error"
}
