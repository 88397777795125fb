package ports

import (
	"context"

	"github.com/storefront/commerce/internal/core/domain"
)

// CartRepository persists carts and their lines.
type CartRepository interface {
	FindByOwner(ctx context.Context, ownerID int64) (*domain.Cart, error)
	// Create makes an empty cart; it returns the existing cart if one was
	// created concurrently.
	Create(ctx context.Context, ownerID int64) (*domain.Cart, error)
	// Mutate runs fn on the owner's cart while holding an exclusive lock on
	// it and persists the resulting lines when fn returns nil.
	Mutate(ctx context.Context, ownerID int64, fn func(cart *domain.Cart) error) (*domain.Cart, error)
	// Delete removes the cart and all of its lines atomically.
	Delete(ctx context.Context, ownerID int64) error
}

type CartService interface {
	SetQuantity(ctx context.Context, ownerID int64, productID string, quantity int) (*domain.Cart, error)
	Read(ctx context.Context, ownerID int64) (*domain.Cart, error)
	Delete(ctx context.Context, ownerID int64) error
}
