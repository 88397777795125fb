package ports

import (
	"context"
	"time"

	"github.com/storefront/commerce/internal/core/domain"
)

// ProductRepository persists products. Soft-deleted products are invisible.
type ProductRepository interface {
	// Create fails with domain.ErrProductExists when the slug is taken.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	SoftDelete(ctx context.Context, id string) error
	// AdjustStock adds delta to the stock count in a single conditional
	// update that never lets the count drop below zero.
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}

// ProductCache is a key-value cache with TTL for product reads.
type ProductCache interface {
	Get(ctx context.Context, key string) (*domain.Product, bool, error)
	Set(ctx context.Context, key string, p *domain.Product, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProductIndex is the full-text search index.
type ProductIndex interface {
	Index(ctx context.Context, p *domain.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
}
