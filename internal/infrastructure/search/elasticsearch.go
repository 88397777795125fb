package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce/internal/core/domain"
)

// Config captures the Elasticsearch connection settings.
type Config struct {
	URL   string
	Index string
}

// ProductIndex keeps a search document per live product.
type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

// Connect builds a client and verifies the cluster answers.
func Connect(ctx context.Context, cfg Config) (*elasticsearch.Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.URL}})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return es, nil
}

func NewProductIndex(es *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{es: es, index: index}
}

type productDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PriceText   string    `json:"priceText"`
	StockCount  int       `json:"stockCount"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toDocument(p *domain.Product) productDocument {
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		PriceText:   p.Price.String(),
		StockCount:  p.StockCount,
		Category:    p.Category,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDocument) toDomain() domain.Product {
	price, err := decimal.NewFromString(d.PriceText)
	if err != nil {
		price = decimal.NewFromFloat(d.Price)
	}
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       price,
		StockCount:  d.StockCount,
		Category:    d.Category,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "slug":        {"type": "keyword"},
      "description": {"type": "text"},
      "price":       {"type": "scaled_float", "scaling_factor": 100},
      "priceText":   {"type": "keyword", "index": false},
      "stockCount":  {"type": "integer"},
      "category":    {"type": "keyword"},
      "tags":        {"type": "keyword"},
      "createdAt":   {"type": "date"},
      "updatedAt":   {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.index}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.index,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("index create: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("index create: %s", res.Status())
	}
	return nil
}

func (i *ProductIndex) Index(ctx context.Context, p *domain.Product) error {
	body, err := json.Marshal(toDocument(p))
	if err != nil {
		return err
	}
	res, err := i.es.Index(i.index, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}

func (i *ProductIndex) Remove(ctx context.Context, id string) error {
	res, err := i.es.Delete(i.index, id, i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove product: %s", res.Status())
	}
	return nil
}

func (i *ProductIndex) Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, err
	}
	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(body)),
		i.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search products: %s", res.Status())
	}
	return decodeHits(res.Body)
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source productDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(r io.Reader) (*domain.ProductPage, error) {
	var sr searchResponse
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	page := &domain.ProductPage{Total: sr.Hits.Total.Value, Items: make([]domain.Product, 0, len(sr.Hits.Hits))}
	for _, h := range sr.Hits.Hits {
		page.Items = append(page.Items, h.Source.toDomain())
	}
	return page, nil
}

// sortFields maps API sort names to indexed fields.
var sortFields = map[string]string{
	"name":       "name.raw",
	"price":      "price",
	"stockCount": "stockCount",
	"createdAt":  "createdAt",
	"updatedAt":  "updatedAt",
}

// buildQuery translates a ProductQuery into a bool query: full text on
// name, category and tags, exact category, tag membership.
func buildQuery(q domain.ProductQuery) map[string]any {
	var must, filter []any
	if q.Text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Text,
				"fields": []string{"name^3", "category", "tags", "description"},
			},
		})
	}
	if q.Category != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"category": q.Category}})
	}
	if len(q.Tags) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"tags": q.Tags}})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"from":  q.Offset(),
		"size":  q.Limit,
	}
	if field, ok := sortFields[q.SortField]; ok {
		order := string(q.SortOrder)
		if order == "" {
			order = string(domain.SortAsc)
		}
		body["sort"] = []any{map[string]any{field: map[string]any{"order": order}}}
	}
	return body
}
