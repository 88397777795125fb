package domain

import (
	"errors"
	"strings"
)

// codes gives every sentinel a stable machine-readable name. The names travel
// in error envelopes so that a sentinel survives a hop between services.
var codes = []struct {
	err  error
	code string
}{
	{ErrUserNotFound, "user_not_found"},
	{ErrUsernameNotFound, "username_not_found"},
	{ErrOwnerNotFound, "owner_not_found"},
	{ErrProductNotFound, "product_not_found"},
	{ErrCartNotFound, "cart_not_found"},
	{ErrLineNotFound, "line_not_found"},
	{ErrOrderNotFound, "order_not_found"},
	{ErrUnauthenticated, "unauthenticated"},
	{ErrInvalidToken, "invalid_token"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrForbidden, "forbidden"},
	{ErrTooManyRequests, "too_many_requests"},
	{ErrUserExists, "user_exists"},
	{ErrProductExists, "product_exists"},
	{ErrOrderExists, "order_exists"},
	{ErrValidation, "validation"},
	{ErrInsufficientStock, "insufficient_stock"},
	{ErrEmptyCart, "empty_cart"},
	{ErrShippingRequired, "shipping_required"},
	{ErrInvalidTransition, "invalid_transition"},
}

// Code returns the code of the first sentinel err wraps, or "" when err is
// not a domain error.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode returns the sentinel registered under code, or nil.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// Message renders err for clients: the sentinel text plus any detail wrapped
// after it ("invalid input: quantity must be >= 0"). Prefixes added by outer
// wraps such as "set cart quantity: " are dropped. Non-domain errors are
// returned as is.
func Message(err error) string {
	sentinel := FromCode(Code(err))
	if sentinel == nil {
		return err.Error()
	}
	msg, text := err.Error(), sentinel.Error()
	if i := strings.Index(msg, text); i >= 0 {
		return msg[i:]
	}
	return text
}
