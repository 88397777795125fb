// Package catalogclient is the gateway's HTTP client for the catalog service.
package catalogclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/storefront/commerce/internal/api/metrics"
	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

// ErrUpstream wraps every catalog failure that does not describe the
// requested product. It carries no domain code, so callers see a 500.
var ErrUpstream = errors.New("catalog request failed")

// resourceErrors are the catalog sentinels passed through to gateway callers.
// Auth failures describe the gateway's service token, not the caller.
var resourceErrors = []error{
	domain.ErrProductNotFound,
	domain.ErrInsufficientStock,
	domain.ErrProductExists,
	domain.ErrValidation,
}

// Config captures where the catalog lives and how long to wait for it.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the catalog REST API. Every request carries a short-lived
// ADMIN service token minted from the shared signing key.
type Client struct {
	http   *resty.Client
	tokens ports.TokenService
}

// serviceIdentity is the caller the catalog sees for gateway traffic.
var serviceIdentity = domain.Claims{ID: 0, Username: "gateway", Role: domain.RoleAdmin}

func New(cfg Config, tokens ports.TokenService) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: hc, tokens: tokens}
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Issue(serviceIdentity)
	if err != nil {
		return nil, fmt.Errorf("catalog service token: %w", err)
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetError(&errorEnvelope{}), nil
}

// do runs one call and turns a non-2xx answer back into a domain error.
func (c *Client) do(operation string, call func() (*resty.Response, error)) error {
	start := time.Now()
	resp, err := call()
	result := "ok"
	defer func() {
		metrics.CatalogRequestDuration.WithLabelValues(operation, result).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		result = "error"
		return fmt.Errorf("catalog %s: %w", operation, err)
	}
	if !resp.IsError() {
		return nil
	}
	result = "error"
	return decodeError(resp.StatusCode(), resp.Error())
}

func decodeError(status int, body any) error {
	env, _ := body.(*errorEnvelope)
	if env != nil {
		if sentinel := domain.FromCode(env.Code); sentinel != nil {
			for _, allowed := range resourceErrors {
				if sentinel == allowed {
					return sentinel
				}
			}
			return fmt.Errorf("%w: status %d: %s", ErrUpstream, status, env.Code)
		}
	}
	if status == http.StatusNotFound {
		return domain.ErrProductNotFound
	}
	msg := http.StatusText(status)
	if env != nil && env.Error != "" {
		msg = env.Error
	}
	return fmt.Errorf("%w: status %d: %s", ErrUpstream, status, msg)
}

// GetProduct satisfies ports.CatalogQuery. It resolves ids only; a slug or
// any other malformed id is reported as domain.ErrProductNotFound.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if !primitive.IsValidObjectID(productID) {
		return nil, domain.ErrProductNotFound
	}
	return c.Get(ctx, productID)
}

func (c *Client) Get(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	if idOrSlug == "" {
		return nil, domain.ErrProductNotFound
	}
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var p domain.Product
	err = c.do("get_product", func() (*resty.Response, error) {
		return req.SetPathParam("id", idOrSlug).SetResult(&p).Get("/products/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Search(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	params := map[string]string{}
	if q.Text != "" {
		params["text"] = q.Text
	}
	if q.Category != "" {
		params["category"] = q.Category
	}
	if len(q.Tags) > 0 {
		params["tags"] = strings.Join(q.Tags, ",")
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.SortField != "" {
		params["sort"] = q.SortField
	}
	if q.SortOrder != "" {
		params["order"] = string(q.SortOrder)
	}

	var page domain.ProductPage
	err = c.do("search_products", func() (*resty.Response, error) {
		return req.SetQueryParams(params).SetResult(&page).Get("/products")
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var created domain.Product
	err = c.do("create_product", func() (*resty.Response, error) {
		return req.SetBody(p).SetResult(&created).Post("/products")
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var updated domain.Product
	err = c.do("update_product", func() (*resty.Response, error) {
		return req.SetPathParam("id", id).SetBody(patch).SetResult(&updated).Patch("/products/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	return c.do("delete_product", func() (*resty.Response, error) {
		return req.SetPathParam("id", id).Delete("/products/{id}")
	})
}

// AdjustStock reserves for a negative delta and releases for a positive one.
func (c *Client) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	switch {
	case delta < 0:
		return c.ReserveStock(ctx, id, -delta)
	case delta > 0:
		return c.ReleaseStock(ctx, id, delta)
	default:
		return nil, fmt.Errorf("%w: quantity must not be zero", domain.ErrValidation)
	}
}

func (c *Client) ReserveStock(ctx context.Context, productID string, quantity int) (*domain.Product, error) {
	return c.stock(ctx, "reserve", productID, quantity)
}

func (c *Client) ReleaseStock(ctx context.Context, productID string, quantity int) (*domain.Product, error) {
	return c.stock(ctx, "release", productID, quantity)
}

func (c *Client) stock(ctx context.Context, direction, productID string, quantity int) (*domain.Product, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	var p domain.Product
	err = c.do(direction+"_stock", func() (*resty.Response, error) {
		return req.
			SetPathParam("id", productID).
			SetBody(stockRequest{Quantity: quantity}).
			SetResult(&p).
			Post("/products/{id}/stock/" + direction)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ping checks that the catalog answers its liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("catalog health: %s", resp.Status())
	}
	return nil
}
