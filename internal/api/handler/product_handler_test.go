package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/storefront/commerce/internal/core/domain"
)

func TestParseProductQuery(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/products?text=%20lamp%20&category=home&tags=a,,b&page=2&limit=10&sort=price&order=DESC", "", nil)
	q, err := ParseProductQuery(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "lamp" || q.Category != "home" || q.Page != 2 || q.Limit != 10 {
		t.Fatalf("unexpected query: %+v", q)
	}
	if len(q.Tags) != 2 || q.Tags[0] != "a" || q.Tags[1] != "b" {
		t.Fatalf("unexpected tags: %v", q.Tags)
	}
	if q.SortField != "price" || q.SortOrder != domain.SortDesc {
		t.Fatalf("unexpected sort: %s %s", q.SortField, q.SortOrder)
	}

	c, _ = newContext(http.MethodGet, "/products?page=-1", "", nil)
	if _, err := ParseProductQuery(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductHandler_Create(t *testing.T) {
	var got *domain.Product
	products := &stubProductService{
		createFn: func(ctx context.Context, p *domain.Product) (*domain.Product, error) {
			got = p
			p.ID = "65f1c0ffee0000000000abcd"
			return p, nil
		},
	}

	body := `{"name":"Lamp","slug":"lamp","price":"19.99","stockCount":3,"tags":["home"]}`
	c, rec := newContext(http.MethodPost, "/products", body, adminClaims)
	if err := NewProductHandler(products).Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !got.Price.Equal(decimal.RequireFromString("19.99")) || got.StockCount != 3 {
		t.Fatalf("unexpected product: %+v", got)
	}

	c, _ = newContext(http.MethodPost, "/products", `{"slug":"lamp"}`, adminClaims)
	if err := NewProductHandler(products).Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductHandler_GetNotFound(t *testing.T) {
	products := &stubProductService{
		getFn: func(ctx context.Context, idOrSlug string) (*domain.Product, error) {
			if idOrSlug != "lamp" {
				t.Fatalf("unexpected id %q", idOrSlug)
			}
			return nil, domain.ErrProductNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/products/lamp", "", nil, "id", "lamp")
	if err := NewProductHandler(products).Get(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
