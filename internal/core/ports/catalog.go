package ports

import (
	"context"

	"github.com/storefront/commerce/internal/core/domain"
)

// CatalogQuery is the read-only view of the catalog used for stock checks.
type CatalogQuery interface {
	// GetProduct resolves by product id only. A slug, a malformed id or an
	// unknown id fails with domain.ErrProductNotFound.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// StockReserver moves stock in and out of the catalog atomically.
type StockReserver interface {
	// ReserveStock decrements stock by quantity only if enough is available,
	// failing with domain.ErrInsufficientStock otherwise.
	ReserveStock(ctx context.Context, productID string, quantity int) (*domain.Product, error)
	ReleaseStock(ctx context.Context, productID string, quantity int) (*domain.Product, error)
}

// ProductService is the catalog's use-case surface. The catalog service
// implements it locally; the gateway reaches it through a remote client.
type ProductService interface {
	Get(ctx context.Context, idOrSlug string) (*domain.Product, error)
	Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}
