package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

const (
	cacheKeyPrefix  = "product."
	defaultCacheTTL = 10 * time.Minute
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductService is the catalog: the repository is the source of truth,
// the cache fronts single-product reads and the index serves search.
type ProductService struct {
	repo     ports.ProductRepository
	cache    ports.ProductCache
	index    ports.ProductIndex
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, cache ports.ProductCache, index ports.ProductIndex, cacheTTL time.Duration, log zerolog.Logger) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &ProductService{repo: repo, cache: cache, index: index, cacheTTL: cacheTTL, log: log}
}

// Get resolves a product by ObjectID hex or, failing that, by slug.
// Cache failures degrade to a direct repository read.
func (s *ProductService) Get(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	if idOrSlug == "" {
		return nil, domain.ErrProductNotFound
	}
	key := cacheKeyPrefix + idOrSlug

	if p, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return p, nil
	}

	var (
		p   *domain.Product
		err error
	)
	if primitive.IsValidObjectID(idOrSlug) {
		p, err = s.repo.FindByID(ctx, idOrSlug)
	} else {
		p, err = s.repo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, p, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return p, nil
}

// GetProduct satisfies ports.CatalogQuery for in-process callers. Unlike Get
// it never falls back to a slug, so cart lines are always keyed by id.
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if !primitive.IsValidObjectID(productID) {
		return nil, domain.ErrProductNotFound
	}
	return s.Get(ctx, productID)
}

// Search normalises paging and sorting and delegates to the index. An empty
// result is reported as domain.ErrProductNotFound.
func (s *ProductService) Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortAsc
	}
	if q.SortOrder != domain.SortAsc && q.SortOrder != domain.SortDesc {
		return nil, fmt.Errorf("%w: sort order must be asc or desc", domain.ErrValidation)
	}
	if q.SortField != "" && !sortableFields[q.SortField] {
		return nil, fmt.Errorf("%w: cannot sort by %q", domain.ErrValidation, q.SortField)
	}

	page, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if page.Total == 0 || len(page.Items) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return page, nil
}

var sortableFields = map[string]bool{
	"name":       true,
	"price":      true,
	"stockCount": true,
	"createdAt":  true,
	"updatedAt":  true,
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.Slug = strings.ToLower(p.Slug)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, created)
	s.log.Info().Str("product_id", created.ID).Str("slug", created.Slug).Msg("product created")
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if patch.StockCount != nil && *patch.StockCount < 0 {
		return nil, fmt.Errorf("%w: stockCount must not be negative", domain.ErrValidation)
	}

	before, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, before)
	s.invalidate(ctx, updated)
	s.reindex(ctx, updated)
	return updated, nil
}

// Delete soft-deletes the product and drops it from search.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, p)
	if err := s.index.Remove(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("product_id", id).Msg("index removal failed")
	}
	s.log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// AdjustStock moves stock by delta in one conditional update; a negative
// delta larger than the stock fails with domain.ErrInsufficientStock.
func (s *ProductService) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: quantity must not be zero", domain.ErrValidation)
	}
	p, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, p)
	s.reindex(ctx, p)
	return p, nil
}

// ReserveStock and ReleaseStock satisfy ports.StockReserver for in-process callers.
func (s *ProductService) ReserveStock(ctx context.Context, productID string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return s.AdjustStock(ctx, productID, -quantity)
}

func (s *ProductService) ReleaseStock(ctx context.Context, productID string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	return s.AdjustStock(ctx, productID, quantity)
}

func (s *ProductService) invalidate(ctx context.Context, p *domain.Product) {
	if p == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyPrefix+p.ID, cacheKeyPrefix+p.Slug); err != nil {
		s.log.Warn().Err(err).Str("product_id", p.ID).Msg("cache invalidation failed")
	}
}

// reindex keeps search eventually consistent; the repository stays authoritative.
func (s *ProductService) reindex(ctx context.Context, p *domain.Product) {
	if err := s.index.Index(ctx, p); err != nil {
		s.log.Warn().Err(err).Str("product_id", p.ID).Msg("index update failed")
	}
}

func validateProduct(p *domain.Product) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: product is required", domain.ErrValidation)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case strings.TrimSpace(p.Slug) == "":
		return fmt.Errorf("%w: slug is required", domain.ErrValidation)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case p.StockCount < 0:
		return fmt.Errorf("%w: stockCount must not be negative", domain.ErrValidation)
	}
	return nil
}
