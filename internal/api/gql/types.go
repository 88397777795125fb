package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/storefront/commerce/internal/core/domain"
)

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"username":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"role":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
		"deletedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var authPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthPayload",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
	},
})

// authPayload is the source value of AuthPayload.
type authPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":        &graphql.Field{Type: graphql.String},
		"slug":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		// Decimal prices travel as strings to keep their precision.
		"price": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				switch v := p.Source.(type) {
				case *domain.Product:
					return v.Price.String(), nil
				case domain.Product:
					return v.Price.String(), nil
				}
				return nil, nil
			},
		},
		"stockCount": &graphql.Field{Type: graphql.Int},
		"category":   &graphql.Field{Type: graphql.String},
		"tags":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"createdAt":  &graphql.Field{Type: graphql.DateTime},
		"updatedAt":  &graphql.Field{Type: graphql.DateTime},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"total": &graphql.Field{Type: graphql.Int},
		"items": &graphql.Field{Type: graphql.NewList(productType)},
	},
})

var cartLineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CartLine",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var cartType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Cart",
	Fields: graphql.Fields{
		"ownerId": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if c, ok := p.Source.(*domain.Cart); ok {
					return c.OwnerID, nil
				}
				return nil, nil
			},
		},
		"lines":     &graphql.Field{Type: graphql.NewList(cartLineType)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var orderLineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderLine",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.String},
		"quantity":  &graphql.Field{Type: graphql.Int},
		"unitPrice": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if l, ok := p.Source.(domain.OrderLine); ok {
					return l.UnitPrice.String(), nil
				}
				return nil, nil
			},
		},
	},
})

var shippingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShippingInfo",
	Fields: graphql.Fields{
		"recipientName": &graphql.Field{Type: graphql.String},
		"address":       &graphql.Field{Type: graphql.String},
		"city":          &graphql.Field{Type: graphql.String},
		"postalCode":    &graphql.Field{Type: graphql.String},
		"phone":         &graphql.Field{Type: graphql.String},
	},
})

var shippingInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ShippingInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"recipientName": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"address":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"city":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"postalCode":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone":         &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"ownerId": &graphql.Field{Type: graphql.Int},
		"status":  &graphql.Field{Type: graphql.String},
		"lines":   &graphql.Field{Type: graphql.NewList(orderLineType)},
		"total": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if o, ok := p.Source.(*domain.Order); ok {
					return o.Total.String(), nil
				}
				return nil, nil
			},
		},
		"shipping":  &graphql.Field{Type: shippingType},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	},
})
