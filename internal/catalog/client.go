package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// Client talks to the remote catalog service. The service fails independently
// of the cart service, so every call goes through its own circuit breaker, and
// concurrent full-catalog fetches collapse into one request via singleflight.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
	sfg     singleflight.Group
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:    "catalog-service",
			Timeout: 30 * time.Second,
		}),
	}
}

// ListProducts fetches the full catalog and flattens it.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := c.sfg.Do("products", func() (interface{}, error) {
		raw, err := c.get(ctx, "/products")
		if err != nil {
			return nil, err
		}
		return Flatten(raw), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// ListProductsByCategory fetches products for one category. The per-category
// endpoint may answer in either catalog shape, so the result is flattened the
// same way as the full listing.
func (c *Client) ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	raw, err := c.get(ctx, "/products/category/"+url.PathEscape(category))
	if err != nil {
		return nil, err
	}
	return Flatten(raw), nil
}

// ListCategories returns the ordered category identifiers.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	raw, err := c.get(ctx, "/categories")
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.breaker.Execute(func() (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog service: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog service: unexpected status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("catalog service: read body: %w", err)
		}
		return body, nil
	})
}
