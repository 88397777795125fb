package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/middleware"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string, role domain.Role) (string, *domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string, role domain.Role) (string, *domain.User, error) {
	return s.registerFn(ctx, username, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubUserService struct {
	getFn           func(ctx context.Context, id int64) (*domain.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	listFn          func(ctx context.Context) ([]*domain.User, error)
	updateFn        func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn        func(ctx context.Context, id int64) error
}

func (s *stubUserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Update(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubCartService struct {
	setFn    func(ctx context.Context, ownerID int64, productID string, quantity int) (*domain.Cart, error)
	readFn   func(ctx context.Context, ownerID int64) (*domain.Cart, error)
	deleteFn func(ctx context.Context, ownerID int64) error
}

func (s *stubCartService) SetQuantity(ctx context.Context, ownerID int64, productID string, quantity int) (*domain.Cart, error) {
	return s.setFn(ctx, ownerID, productID, quantity)
}

func (s *stubCartService) Read(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	return s.readFn(ctx, ownerID)
}

func (s *stubCartService) Delete(ctx context.Context, ownerID int64) error {
	return s.deleteFn(ctx, ownerID)
}

type stubOrderService struct {
	reserveFn  func(ctx context.Context, ownerID int64, key string) (*domain.Order, error)
	shippingFn func(ctx context.Context, ownerID int64, info domain.ShippingInfo) (*domain.Order, error)
	shipFn     func(ctx context.Context, ownerID int64) (*domain.Order, error)
	readFn     func(ctx context.Context, ownerID int64) (*domain.Order, error)
	cancelFn   func(ctx context.Context, ownerID int64) (*domain.Order, error)
	attnFn     func(ctx context.Context) ([]*domain.Order, error)
}

func (s *stubOrderService) Reserve(ctx context.Context, ownerID int64, key string) (*domain.Order, error) {
	return s.reserveFn(ctx, ownerID, key)
}

func (s *stubOrderService) AttachShipping(ctx context.Context, ownerID int64, info domain.ShippingInfo) (*domain.Order, error) {
	return s.shippingFn(ctx, ownerID, info)
}

func (s *stubOrderService) Ship(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return s.shipFn(ctx, ownerID)
}

func (s *stubOrderService) Read(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return s.readFn(ctx, ownerID)
}

func (s *stubOrderService) Cancel(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return s.cancelFn(ctx, ownerID)
}

func (s *stubOrderService) NeedingAttention(ctx context.Context) ([]*domain.Order, error) {
	return s.attnFn(ctx)
}

type stubProductService struct {
	getFn    func(ctx context.Context, idOrSlug string) (*domain.Product, error)
	searchFn func(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	createFn func(ctx context.Context, p *domain.Product) (*domain.Product, error)
	updateFn func(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubProductService) Get(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	return s.getFn(ctx, idOrSlug)
}

func (s *stubProductService) Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	return s.searchFn(ctx, q)
}

func (s *stubProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return s.createFn(ctx, p)
}

func (s *stubProductService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubProductService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubProductService) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

// newContext builds an echo context with a JSON body, optional claims and
// path parameters given as name/value pairs.
func newContext(method, target, body string, claims *domain.Claims, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if claims != nil {
		middleware.SetClaims(c, claims)
	}
	return c, rec
}
