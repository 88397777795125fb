package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog service. Other services only read it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockCount  int             `json:"stockCount"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt"`
}

// ProductPatch carries the optional fields of a product update.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Slug        *string          `json:"slug,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	StockCount  *int             `json:"stockCount,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil && p.Price == nil &&
		p.StockCount == nil && p.Category == nil && len(p.Tags) == 0
}

// Apply copies the set fields of p onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Slug != nil {
		product.Slug = *p.Slug
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.StockCount != nil {
		product.StockCount = *p.StockCount
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if len(p.Tags) > 0 {
		product.Tags = append([]string(nil), p.Tags...)
	}
}

// SortOrder is the direction of a search sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ProductQuery is a structured search: full-text term, equality and
// set-membership filters, one sort field and offset/limit pagination.
type ProductQuery struct {
	Text      string
	Category  string
	Tags      []string
	Page      int
	Limit     int
	SortField string
	SortOrder SortOrder
}

// Offset returns the zero-based offset of the first hit of the page.
func (q ProductQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ProductPage is one page of search results.
type ProductPage struct {
	Total int64     `json:"total"`
	Items []Product `json:"items"`
}
