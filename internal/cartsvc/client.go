// Package cartsvc is the HTTP client for the remote cart-storage service.
package cartsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/SgtSlaughter1/flipkart-bff/internal/domain"
)

// ErrRejected wraps a service-reported failure (success:false). It is
// recoverable: read paths degrade to an empty result, mutation paths roll the
// optimistic state back. Transport and parse failures come back as plain
// errors instead.
var ErrRejected = errors.New("cart service rejected request")

type listResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    []domain.CartRecord `json:"data"`
}

type mutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// rawResponse carries the status out of the breaker so that a non-2xx
// business rejection does not count as an upstream failure.
type rawResponse struct {
	status int
	body   []byte
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[rawResponse]
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: gobreaker.NewCircuitBreaker[rawResponse](gobreaker.Settings{
			Name:    "cart-service",
			Timeout: 30 * time.Second,
		}),
	}
}

// ListCarts returns every cart record the service knows about. Filtering to
// one user's active records happens client-side in the merger.
func (c *Client) ListCarts(ctx context.Context) ([]domain.CartRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/carts", nil)
	if err != nil {
		return nil, err
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode carts: %w", err)
	}
	if !resp.Success {
		return nil, rejected(resp.Message)
	}
	return resp.Data, nil
}

// AdjustQuantity sends a delta for (user, product). The service accumulates
// deltas server-side; it never receives an absolute quantity.
func (c *Client) AdjustQuantity(ctx context.Context, userID, productID string, delta int) error {
	payload := map[string]interface{}{
		"productId": productID,
		"quantity":  delta,
		"userId":    userID,
	}
	body, err := c.do(ctx, http.MethodPost, "/cart/add", payload)
	if err != nil {
		return err
	}
	return checkMutation(body)
}

// RemoveItem deletes (user, product) from the user's cart.
func (c *Client) RemoveItem(ctx context.Context, userID, productID string) error {
	payload := map[string]interface{}{"productId": productID}
	body, err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID), payload)
	if err != nil {
		return err
	}
	return checkMutation(body)
}

func checkMutation(body []byte) error {
	var resp mutationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode mutation response: %w", err)
	}
	if !resp.Success {
		return rejected(resp.Message)
	}
	return nil
}

func rejected(message string) error {
	if message == "" {
		return ErrRejected
	}
	return fmt.Errorf("%w: %s", ErrRejected, message)
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	raw, err := c.breaker.Execute(func() (rawResponse, error) {
		var reqBody io.Reader
		if payload != nil {
			buf, err := json.Marshal(payload)
			if err != nil {
				return rawResponse{}, err
			}
			reqBody = bytes.NewReader(buf)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return rawResponse{}, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return rawResponse{}, fmt.Errorf("cart service: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return rawResponse{}, fmt.Errorf("cart service: read body: %w", err)
		}
		return rawResponse{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	if raw.status < 200 || raw.status > 299 {
		// A rejection envelope on an error status keeps its error class.
		var fail struct {
			Success *bool  `json:"success"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw.body, &fail) == nil && fail.Success != nil && !*fail.Success {
			return nil, rejected(fail.Message)
		}
		return nil, fmt.Errorf("cart service: unexpected status %d", raw.status)
	}
	return raw.body, nil
}
