package domain

import "errors"

// Not found.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameNotFound = errors.New("username not found")
	ErrOwnerNotFound    = errors.New("can't find user with given id")
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrLineNotFound     = errors.New("cart does not contain the given product")
	ErrOrderNotFound    = errors.New("order not found")
)

// Authentication and authorization.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("password is wrong")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyRequests    = errors.New("too many requests")
)

// Conflicts.
var (
	ErrUserExists    = errors.New("username already exists")
	ErrProductExists = errors.New("product already exists")
	ErrOrderExists   = errors.New("an open order already exists")
)

// Business rule violations.
var (
	ErrValidation        = errors.New("invalid input")
	ErrInsufficientStock = errors.New("not enough products in stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrShippingRequired  = errors.New("shipping information is required")
	ErrInvalidTransition = errors.New("invalid order status transition")
)
