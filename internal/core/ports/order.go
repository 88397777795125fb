package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce/internal/core/domain"
)

// OrderRepository persists orders. An owner has at most one open order.
type OrderRepository interface {
	// Create fails with domain.ErrOrderExists when the owner already has an open order.
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindOpenByOwner(ctx context.Context, ownerID int64) (*domain.Order, error)
	FindLatestByOwner(ctx context.Context, ownerID int64) (*domain.Order, error)
	// Save persists status and shipping changes only while the stored status
	// still equals from; otherwise it fails with domain.ErrInvalidTransition.
	Save(ctx context.Context, o *domain.Order, from domain.OrderStatus) error
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
}

// IdempotencyStore remembers the result of a keyed request for a while.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, value string, ttl time.Duration) error
}

type OrderService interface {
	Reserve(ctx context.Context, ownerID int64, idempotencyKey string) (*domain.Order, error)
	AttachShipping(ctx context.Context, ownerID int64, info domain.ShippingInfo) (*domain.Order, error)
	Ship(ctx context.Context, ownerID int64) (*domain.Order, error)
	Read(ctx context.Context, ownerID int64) (*domain.Order, error)
	Cancel(ctx context.Context, ownerID int64) (*domain.Order, error)
	NeedingAttention(ctx context.Context) ([]*domain.Order, error)
}
