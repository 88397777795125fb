package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce/internal/api/handler"
	"github.com/storefront/commerce/internal/api/middleware"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
	"github.com/storefront/commerce/internal/core/service"
)

// Route is one entry of a route table: every route is declared once
// together with the policy that guards it.
type Route struct {
	Method  string
	Path    string
	Policy  service.Policy
	Handler echo.HandlerFunc
	// Pre runs before the policy check, e.g. rate limiting.
	Pre []echo.MiddlewareFunc
}

var (
	identified    = service.Policy{MinRole: domain.RoleAnonymous, Identified: true}
	selfOrAdmin   = service.Policy{MinRole: domain.RoleAnonymous, Identified: true, Owned: true, OwnerParam: "id"}
	customerOwned = service.Policy{MinRole: domain.RoleCustomer, Owned: true, OwnerParam: "id"}
	adminOnly     = service.Policy{MinRole: domain.RoleAdmin}
)

// Register mounts a route table on e. Authentication runs for every route;
// each route then enforces its own policy.
func Register(e *echo.Echo, a *service.Authorizer, routes []Route) {
	g := e.Group("", middleware.Authenticate(a))
	for _, r := range routes {
		mw := append(append([]echo.MiddlewareFunc{}, r.Pre...), middleware.Require(a, r.Policy))
		g.Add(r.Method, r.Path, r.Handler, mw...)
	}
}

// GatewayDeps are the collaborators of the gateway route table.
type GatewayDeps struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Products ports.ProductService
	Carts    ports.CartService
	Orders   ports.OrderService
	// GraphQL is optional; nil leaves /graphql unmounted.
	GraphQL    echo.HandlerFunc
	LoginRate  float64
	LoginBurst int
}

// GatewayRoutes is the REST surface of the gateway.
func GatewayRoutes(d GatewayDeps) []Route {
	auth := handler.NewAuthHandler(d.Auth)
	users := handler.NewUserHandler(d.Auth, d.Users)
	carts := handler.NewCartHandler(d.Carts)
	orders := handler.NewOrderHandler(d.Orders)

	routes := []Route{
		{Method: http.MethodPost, Path: "/auth/login", Policy: service.Public, Handler: auth.Login,
			Pre: []echo.MiddlewareFunc{middleware.RateLimitByIP(d.LoginRate, d.LoginBurst)}},

		// Role on create is checked by the handler; it depends on the body.
		{Method: http.MethodPost, Path: "/users", Policy: service.Public, Handler: users.Create},
		{Method: http.MethodGet, Path: "/users", Policy: identified, Handler: users.Read},
		{Method: http.MethodGet, Path: "/users/:id", Policy: selfOrAdmin, Handler: users.Get},
		{Method: http.MethodPatch, Path: "/users/:id", Policy: selfOrAdmin, Handler: users.Update},
		{Method: http.MethodDelete, Path: "/users/:id", Policy: selfOrAdmin, Handler: users.Delete},

		{Method: http.MethodGet, Path: "/carts/:id", Policy: customerOwned, Handler: carts.Read},
		{Method: http.MethodPatch, Path: "/carts/:id", Policy: customerOwned, Handler: carts.SetQuantity},
		{Method: http.MethodDelete, Path: "/carts/:id", Policy: customerOwned, Handler: carts.Delete},

		{Method: http.MethodPost, Path: "/orders/reserve", Policy: customerOwned, Handler: orders.Reserve},
		{Method: http.MethodPost, Path: "/orders/reserve/:id", Policy: customerOwned, Handler: orders.Reserve},
		{Method: http.MethodPost, Path: "/orders/shipping", Policy: customerOwned, Handler: orders.Shipping},
		{Method: http.MethodPost, Path: "/orders/shipping/:id", Policy: customerOwned, Handler: orders.Shipping},
		{Method: http.MethodGet, Path: "/orders", Policy: customerOwned, Handler: orders.Read},
		{Method: http.MethodGet, Path: "/orders/:id", Policy: customerOwned, Handler: orders.Read},
		{Method: http.MethodDelete, Path: "/orders", Policy: customerOwned, Handler: orders.Cancel},
		{Method: http.MethodDelete, Path: "/orders/:id", Policy: customerOwned, Handler: orders.Cancel},
		{Method: http.MethodGet, Path: "/orders/admin", Policy: adminOnly, Handler: orders.NeedingAttention},
		{Method: http.MethodPost, Path: "/orders/admin/:id/ship", Policy: adminOnly, Handler: orders.Ship},
	}
	routes = append(routes, productRoutes(handler.NewProductHandler(d.Products))...)

	if d.GraphQL != nil {
		// Each GraphQL operation enforces its own policy.
		routes = append(routes, Route{Method: http.MethodPost, Path: "/graphql", Policy: service.Public, Handler: d.GraphQL})
	}
	return routes
}

// CatalogDeps are the collaborators of the catalog route table.
type CatalogDeps struct {
	Products ports.ProductService
	Stock    ports.StockReserver
}

// CatalogRoutes is the REST surface of the catalog service.
func CatalogRoutes(d CatalogDeps) []Route {
	stock := handler.NewStockHandler(d.Stock)

	routes := productRoutes(handler.NewProductHandler(d.Products))
	return append(routes,
		Route{Method: http.MethodPost, Path: "/products/:id/stock/reserve", Policy: adminOnly, Handler: stock.Reserve},
		Route{Method: http.MethodPost, Path: "/products/:id/stock/release", Policy: adminOnly, Handler: stock.Release},
	)
}

func productRoutes(products *handler.ProductHandler) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/products", Policy: service.Public, Handler: products.Search},
		{Method: http.MethodGet, Path: "/products/:id", Policy: service.Public, Handler: products.Get},
		{Method: http.MethodPost, Path: "/products", Policy: adminOnly, Handler: products.Create},
		{Method: http.MethodPatch, Path: "/products/:id", Policy: adminOnly, Handler: products.Update},
		{Method: http.MethodDelete, Path: "/products/:id", Policy: adminOnly, Handler: products.Delete},
	}
}
