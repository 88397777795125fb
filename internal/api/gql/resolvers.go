package gql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
	"github.com/storefront/commerce/internal/core/service"
)

func (r *resolver) me(p graphql.ResolveParams, claims *domain.Claims, _ int64) (any, error) {
	return r.Users.Get(p.Context, claims.ID)
}

func (r *resolver) user(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Users.Get(p.Context, owner)
}

func (r *resolver) users(p graphql.ResolveParams, _ *domain.Claims, _ int64) (any, error) {
	return r.Users.List(p.Context)
}

func (r *resolver) product(p graphql.ResolveParams, _ *domain.Claims, _ int64) (any, error) {
	return r.Products.Get(p.Context, stringArg(p, "id"))
}

func (r *resolver) products(p graphql.ResolveParams, _ *domain.Claims, _ int64) (any, error) {
	q := domain.ProductQuery{
		Text:      strings.TrimSpace(stringArg(p, "text")),
		Category:  strings.TrimSpace(stringArg(p, "category")),
		Page:      intArg(p, "page"),
		Limit:     intArg(p, "limit"),
		SortField: stringArg(p, "sort"),
		SortOrder: domain.SortOrder(strings.ToLower(stringArg(p, "order"))),
	}
	if tags, ok := p.Args["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok && s != "" {
				q.Tags = append(q.Tags, s)
			}
		}
	}
	return r.Products.Search(p.Context, q)
}

func (r *resolver) cart(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Carts.Read(p.Context, owner)
}

func (r *resolver) order(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Orders.Read(p.Context, owner)
}

func (r *resolver) ordersNeedingAttention(p graphql.ResolveParams, _ *domain.Claims, _ int64) (any, error) {
	return r.Orders.NeedingAttention(p.Context)
}

func (r *resolver) login(p graphql.ResolveParams, _ *domain.Claims, _ int64) (any, error) {
	token, user, err := r.Auth.Login(p.Context, stringArg(p, "username"), stringArg(p, "password"))
	if err != nil {
		return nil, err
	}
	return authPayload{Token: token, User: user}, nil
}

func (r *resolver) userCreate(p graphql.ResolveParams, claims *domain.Claims, _ int64) (any, error) {
	role := domain.RoleAnonymous
	if raw := stringArg(p, "role"); raw != "" {
		if err := service.Authorize(claims, domain.RoleAdmin).Err(); err != nil {
			return nil, err
		}
		parsed, ok := domain.ParseRole(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, raw)
		}
		role = parsed
	}

	token, user, err := r.Auth.Register(p.Context, stringArg(p, "username"), stringArg(p, "password"), role)
	if err != nil {
		return nil, err
	}
	return authPayload{Token: token, User: user}, nil
}

func (r *resolver) userUpdate(p graphql.ResolveParams, claims *domain.Claims, owner int64) (any, error) {
	var in ports.UpdateUserInput
	if v, ok := p.Args["username"].(string); ok {
		in.Username = &v
	}
	if v, ok := p.Args["password"].(string); ok {
		in.Password = &v
	}
	if raw, ok := p.Args["role"].(string); ok {
		if err := service.Authorize(claims, domain.RoleAdmin).Err(); err != nil {
			return nil, err
		}
		role, ok := domain.ParseRole(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, raw)
		}
		in.Role = &role
	}
	return r.Users.Update(p.Context, owner, in)
}

func (r *resolver) userDelete(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	if err := r.Users.Delete(p.Context, owner); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *resolver) cartSetQuantity(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Carts.SetQuantity(p.Context, owner, stringArg(p, "productId"), intArg(p, "quantity"))
}

func (r *resolver) cartDelete(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	if err := r.Carts.Delete(p.Context, owner); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *resolver) orderReserve(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Orders.Reserve(p.Context, owner, stringArg(p, "idempotencyKey"))
}

func (r *resolver) orderShipping(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	in, _ := p.Args["shipping"].(map[string]any)
	str := func(k string) string {
		s, _ := in[k].(string)
		return s
	}
	return r.Orders.AttachShipping(p.Context, owner, domain.ShippingInfo{
		RecipientName: str("recipientName"),
		Address:       str("address"),
		City:          str("city"),
		PostalCode:    str("postalCode"),
		Phone:         str("phone"),
	})
}

func (r *resolver) orderCancel(p graphql.ResolveParams, _ *domain.Claims, owner int64) (any, error) {
	return r.Orders.Cancel(p.Context, owner)
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}
