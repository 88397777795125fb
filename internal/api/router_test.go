package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/api/handler"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
	"github.com/storefront/commerce/internal/core/service"
)

type fakeUsers struct{}

func (fakeUsers) Get(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}
func (fakeUsers) GetByUsername(_ context.Context, u string) (*domain.User, error) {
	return &domain.User{Username: u}, nil
}
func (fakeUsers) List(context.Context) ([]*domain.User, error) { return nil, nil }
func (fakeUsers) Update(_ context.Context, id int64, _ ports.UpdateUserInput) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}
func (fakeUsers) Delete(context.Context, int64) error { return nil }

type fakeCarts struct{}

func (fakeCarts) SetQuantity(_ context.Context, owner int64, p string, q int) (*domain.Cart, error) {
	return &domain.Cart{OwnerID: owner, Lines: []domain.CartLine{{ProductID: p, Quantity: q}}}, nil
}
func (fakeCarts) Read(_ context.Context, owner int64) (*domain.Cart, error) {
	return &domain.Cart{OwnerID: owner}, nil
}
func (fakeCarts) Delete(context.Context, int64) error { return nil }

type fakeOrders struct{}

func (fakeOrders) Reserve(_ context.Context, owner int64, _ string) (*domain.Order, error) {
	return &domain.Order{OwnerID: owner}, nil
}
func (fakeOrders) AttachShipping(_ context.Context, owner int64, _ domain.ShippingInfo) (*domain.Order, error) {
	return &domain.Order{OwnerID: owner}, nil
}
func (fakeOrders) Ship(_ context.Context, owner int64) (*domain.Order, error) {
	return &domain.Order{OwnerID: owner}, nil
}
func (fakeOrders) Read(_ context.Context, owner int64) (*domain.Order, error) {
	return &domain.Order{OwnerID: owner}, nil
}
func (fakeOrders) Cancel(_ context.Context, owner int64) (*domain.Order, error) {
	return &domain.Order{OwnerID: owner}, nil
}
func (fakeOrders) NeedingAttention(context.Context) ([]*domain.Order, error) { return nil, nil }

type fakeProducts struct{}

func (fakeProducts) Get(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (fakeProducts) Search(context.Context, domain.ProductQuery) (*domain.ProductPage, error) {
	return &domain.ProductPage{Total: 1, Items: []domain.Product{{ID: "p1"}}}, nil
}
func (fakeProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	return p, nil
}
func (fakeProducts) Update(_ context.Context, id string, _ domain.ProductPatch) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (fakeProducts) Delete(context.Context, string) error { return nil }
func (fakeProducts) AdjustStock(_ context.Context, id string, _ int) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}

func newGateway(t *testing.T) (*echo.Echo, *service.TokenService) {
	t.Helper()
	tokens := service.NewTokenService("router-test-secret", time.Hour, "")
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	e.Validator = handler.NewValidator()
	Register(e, service.NewAuthorizer(tokens), GatewayRoutes(GatewayDeps{
		Users:      fakeUsers{},
		Products:   fakeProducts{},
		Carts:      fakeCarts{},
		Orders:     fakeOrders{},
		LoginRate:  10,
		LoginBurst: 10,
	}))
	return e, tokens
}

func TestGatewayRoutes_Policies(t *testing.T) {
	e, tokens := newGateway(t)

	bearer := func(id int64, role domain.Role) string {
		tok, err := tokens.Issue(domain.Claims{ID: id, Username: "u", Role: role})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		return "Bearer " + tok
	}
	anonymous := ""
	guest := bearer(5, domain.RoleAnonymous)
	customer := bearer(7, domain.RoleCustomer)
	admin := bearer(1, domain.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"products are public", http.MethodGet, "/products", anonymous, http.StatusOK},
		{"product by id is public", http.MethodGet, "/products/p1", anonymous, http.StatusOK},
		{"delete product needs login", http.MethodDelete, "/products/p1", anonymous, http.StatusUnauthorized},
		{"delete product needs admin", http.MethodDelete, "/products/p1", customer, http.StatusForbidden},
		{"admin deletes product", http.MethodDelete, "/products/p1", admin, http.StatusNoContent},

		{"user list needs identity", http.MethodGet, "/users?id=7", anonymous, http.StatusUnauthorized},
		{"guest reads itself", http.MethodGet, "/users/5", guest, http.StatusOK},
		{"guest reads other", http.MethodGet, "/users/7", guest, http.StatusForbidden},
		{"admin reads other", http.MethodGet, "/users/7", admin, http.StatusOK},
		{"bad token is anonymous", http.MethodGet, "/users/5", "Bearer garbage", http.StatusUnauthorized},

		{"cart needs login", http.MethodGet, "/carts/7", anonymous, http.StatusUnauthorized},
		{"guest role cannot use carts", http.MethodGet, "/carts/5", guest, http.StatusForbidden},
		{"customer reads own cart", http.MethodGet, "/carts/7", customer, http.StatusOK},
		{"customer reads other cart", http.MethodGet, "/carts/8", customer, http.StatusForbidden},
		{"admin reads any cart", http.MethodGet, "/carts/8", admin, http.StatusOK},
		{"policy before validation", http.MethodPatch, "/carts/8", customer, http.StatusForbidden},

		{"customer reads own order", http.MethodGet, "/orders", customer, http.StatusOK},
		{"customer reserves other", http.MethodPost, "/orders/reserve/8", customer, http.StatusForbidden},
		{"admin reserves other", http.MethodPost, "/orders/reserve/8", admin, http.StatusCreated},
		{"attention list is static route", http.MethodGet, "/orders/admin", customer, http.StatusForbidden},
		{"admin attention list", http.MethodGet, "/orders/admin", admin, http.StatusOK},
		{"ship needs admin", http.MethodPost, "/orders/admin/7/ship", customer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGatewayRoutes_AccessCheckedBeforePayload(t *testing.T) {
	e, tokens := newGateway(t)
	tok, err := tokens.Issue(domain.Claims{ID: 7, Username: "u", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"anonymous", "/carts/7", "", http.StatusUnauthorized},
		{"other owner", "/carts/8", "Bearer " + tok, http.StatusForbidden},
		{"own cart", "/carts/7", "Bearer " + tok, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(`{"productId":`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCatalogRoutes_StockNeedsAdmin(t *testing.T) {
	tokens := service.NewTokenService("router-test-secret", time.Hour, "")
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	e.Validator = handler.NewValidator()
	Register(e, service.NewAuthorizer(tokens), CatalogRoutes(CatalogDeps{Products: fakeProducts{}, Stock: fakeStock{}}))

	req := httptest.NewRequest(http.MethodPost, "/products/p1/stock/reserve", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type fakeStock struct{}

func (fakeStock) ReserveStock(_ context.Context, id string, _ int) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
func (fakeStock) ReleaseStock(_ context.Context, id string, _ int) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}
