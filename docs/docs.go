// Package docs is generated by swag from the handler annotations
// (swag init -g cmd/gateway/main.go). Do not edit by hand.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Password is wrong", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "Username is not found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user or all users",
                "parameters": [
                    {"type": "integer", "description": "User id", "name": "id", "in": "query"},
                    {"type": "string", "description": "Username", "name": "username", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a user",
                "parameters": [
                    {"description": "User details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "401": {"description": "You must be logged in to set user role", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "Only admins can set the role of a new user", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "Username already exists", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get a user by id",
                "parameters": [{"type": "integer", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update a user",
                "parameters": [
                    {"type": "integer", "description": "User id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateUserRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Delete a user",
                "parameters": [{"type": "integer", "description": "User id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "Search products",
                "parameters": [
                    {"type": "string", "name": "text", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "description": "Comma-separated tags", "name": "tags", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ProductPage"}},
                    "404": {"description": "No products found matching the search criteria", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [{"description": "Product", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Product"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}}}
            }
        },
        "/products/{id}": {
            "get": {
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [{"type": "string", "description": "Product id or slug", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Update a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/carts/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["carts"],
                "summary": "Get the full cart",
                "parameters": [{"type": "integer", "description": "Owner id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Cart"}}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["carts"],
                "summary": "Set quantity of a product",
                "parameters": [
                    {"type": "integer", "description": "Owner id", "name": "id", "in": "path", "required": true},
                    {"description": "Product and quantity", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.setQuantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Cart"}},
                    "400": {"description": "Not enough products in stock", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["carts"],
                "summary": "Remove the whole cart",
                "parameters": [{"type": "integer", "description": "Owner id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/orders/reserve/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Reserve a cart to order",
                "parameters": [
                    {"type": "integer", "description": "Owner id (admins or self)", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Retry key", "name": "Idempotency-Key", "in": "header"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Order"}},
                    "409": {"description": "An open order already exists", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/orders/shipping/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Set shipping info of an order",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}}}
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Get status of an order",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Cancel an order",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}}}
            }
        },
        "/orders/admin": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "List orders that need admin attention",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Order"}}}}
            }
        },
        "/orders/admin/{id}/ship": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["orders"],
                "summary": "Ship an order",
                "parameters": [{"type": "integer", "description": "Owner id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Order"}}}
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string", "enum": ["ANONYMOUS", "CUSTOMER", "ADMIN"]},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "deletedAt": {"type": "string"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "stockCount": {"type": "integer"},
                "category": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.ProductPage": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}
            }
        },
        "domain.Cart": {
            "type": "object",
            "properties": {
                "lines": {"type": "array", "items": {"$ref": "#/definitions/domain.CartLine"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.CartLine": {
            "type": "object",
            "properties": {"productId": {"type": "string"}, "quantity": {"type": "integer"}}
        },
        "domain.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ownerId": {"type": "integer"},
                "status": {"type": "string", "enum": ["reserved", "awaiting_shipment", "shipped", "cancelled"]},
                "total": {"type": "string"},
                "lines": {"type": "array", "items": {"type": "object"}},
                "shipping": {"type": "object"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.createUserRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}}
        },
        "handler.updateUserRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}}
        },
        "handler.setQuantityRequest": {
            "type": "object",
            "required": ["productId", "quantity"],
            "properties": {"productId": {"type": "string"}, "quantity": {"type": "integer"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront gateway API",
	Description:      "",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
