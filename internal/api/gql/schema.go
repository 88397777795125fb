package gql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
	"github.com/storefront/commerce/internal/core/service"
)

var (
	identified    = service.Policy{MinRole: domain.RoleAnonymous, Identified: true}
	selfOrAdmin   = service.Policy{MinRole: domain.RoleAnonymous, Identified: true, Owned: true, OwnerParam: "id"}
	customerOwned = service.Policy{MinRole: domain.RoleCustomer, Owned: true, OwnerParam: "ownerId"}
	adminOnly     = service.Policy{MinRole: domain.RoleAdmin}
)

// Policies guards every root field. A field missing here is rejected.
var Policies = map[string]service.Policy{
	"me":                     identified,
	"user":                   selfOrAdmin,
	"users":                  adminOnly,
	"product":                service.Public,
	"products":               service.Public,
	"cart":                   customerOwned,
	"order":                  customerOwned,
	"ordersNeedingAttention": adminOnly,

	"login":           service.Public,
	"userCreate":      service.Public,
	"userUpdate":      selfOrAdmin,
	"userDelete":      selfOrAdmin,
	"cartSetQuantity": customerOwned,
	"cartDelete":      customerOwned,
	"orderReserve":    customerOwned,
	"orderShipping":   customerOwned,
	"orderCancel":     customerOwned,
}

// Deps are the services behind the schema.
type Deps struct {
	Authorizer *service.Authorizer
	Auth       ports.AuthService
	Users      ports.UserService
	Products   ports.ProductService
	Carts      ports.CartService
	Orders     ports.OrderService
	Logger     zerolog.Logger
}

type resolver struct {
	Deps
}

// guarded wraps a resolve function with the policy of field. The resolved
// owner id is passed on; it is zero for policies that are not owned.
func (r *resolver) guarded(field string, fn func(p graphql.ResolveParams, claims *domain.Claims, owner int64) (any, error)) graphql.FieldResolveFn {
	policy, ok := Policies[field]
	if !ok {
		panic(fmt.Sprintf("gql: no policy for field %q", field))
	}
	return func(p graphql.ResolveParams) (any, error) {
		claims := ClaimsFrom(p.Context)

		var owner int64
		if policy.Owned && claims != nil {
			owner = claims.ID
			if v, ok := p.Args[policy.OwnerParam].(int); ok {
				owner = int64(v)
			}
		}

		d := r.Authorizer.Check(claims, policy, owner)
		metrics.AuthzDecisionsTotal.WithLabelValues(d.String()).Inc()
		if err := d.Err(); err != nil {
			return nil, err
		}
		return fn(p, claims, owner)
	}
}

// NewSchema builds the gateway schema.
func NewSchema(d Deps) (graphql.Schema, error) {
	r := &resolver{Deps: d}

	ownerArg := graphql.FieldConfigArgument{
		"ownerId": &graphql.ArgumentConfig{Type: graphql.Int, Description: "Defaults to the caller"},
	}
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.guarded("me", r.me),
			},
			"user": &graphql.Field{
				Type:    userType,
				Args:    idArg,
				Resolve: r.guarded("user", r.user),
			},
			"users": &graphql.Field{
				Type:    graphql.NewList(userType),
				Resolve: r.guarded("users", r.users),
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String), Description: "Id or slug"},
				},
				Resolve: r.guarded("product", r.product),
			},
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"text":     &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"tags":     &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String},
					"order":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guarded("products", r.products),
			},
			"cart": &graphql.Field{
				Type:    cartType,
				Args:    ownerArg,
				Resolve: r.guarded("cart", r.cart),
			},
			"order": &graphql.Field{
				Type:    orderType,
				Args:    ownerArg,
				Resolve: r.guarded("order", r.order),
			},
			"ordersNeedingAttention": &graphql.Field{
				Type:    graphql.NewList(orderType),
				Resolve: r.guarded("ordersNeedingAttention", r.ordersNeedingAttention),
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"login": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.guarded("login", r.login),
			},
			"userCreate": &graphql.Field{
				Type: authPayloadType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"role":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guarded("userCreate", r.userCreate),
			},
			"userUpdate": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"password": &graphql.ArgumentConfig{Type: graphql.String},
					"role":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guarded("userUpdate", r.userUpdate),
			},
			"userDelete": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    idArg,
				Resolve: r.guarded("userDelete", r.userDelete),
			},
			"cartSetQuantity": &graphql.Field{
				Type: cartType,
				Args: graphql.FieldConfigArgument{
					"ownerId":   &graphql.ArgumentConfig{Type: graphql.Int},
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"quantity":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.guarded("cartSetQuantity", r.cartSetQuantity),
			},
			"cartDelete": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    ownerArg,
				Resolve: r.guarded("cartDelete", r.cartDelete),
			},
			"orderReserve": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"ownerId":        &graphql.ArgumentConfig{Type: graphql.Int},
					"idempotencyKey": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.guarded("orderReserve", r.orderReserve),
			},
			"orderShipping": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"ownerId":  &graphql.ArgumentConfig{Type: graphql.Int},
					"shipping": &graphql.ArgumentConfig{Type: graphql.NewNonNull(shippingInput)},
				},
				Resolve: r.guarded("orderShipping", r.orderShipping),
			},
			"orderCancel": &graphql.Field{
				Type:    orderType,
				Args:    ownerArg,
				Resolve: r.guarded("orderCancel", r.orderCancel),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
