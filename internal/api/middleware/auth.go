package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/service"
)

const (
	claimsKey  = "claims"
	ownerIDKey = "owner_id"
)

// Authenticate resolves the Authorization header into claims and stores
// them in the context. It never rejects a request: a missing or bad token
// leaves the caller anonymous and the route policy decides.
func Authenticate(a *service.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims := a.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization)); claims != nil {
				c.Set(claimsKey, claims)
			}
			return next(c)
		}
	}
}

// Claims returns the caller's claims, or nil for an anonymous caller.
func Claims(c echo.Context) *domain.Claims {
	claims, _ := c.Get(claimsKey).(*domain.Claims)
	return claims
}

// SetClaims stores claims in the context. Used by tests and by callers that
// authenticate by other means.
func SetClaims(c echo.Context, claims *domain.Claims) {
	c.Set(claimsKey, claims)
}

// OwnerID returns the owner id resolved by Require for owned routes.
func OwnerID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ownerIDKey).(int64)
	return id, ok
}
