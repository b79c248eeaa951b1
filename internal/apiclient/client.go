// Package apiclient talks to the Catalog and Order services over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wichananm65/laundry-pos/internal/catalog"
	"github.com/wichananm65/laundry-pos/internal/order"
	"go.uber.org/zap"
)

// StatusError is returned for any non-2xx response. Body holds the raw
// response text.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api returned %d", e.Status)
}

// Client calls the POS API rooted at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an API client. A nil httpClient gets a 30s timeout;
// per-call deadlines come from the context.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health calls GET /health and returns the reported status string. A 2xx
// response whose body is not the expected JSON yields an empty status and
// no error.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return "", err
	}
	var h healthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		return "", nil
	}
	return h.Status, nil
}

// ListServices calls GET /services.
func (c *Client) ListServices(ctx context.Context) ([]catalog.Item, error) {
	body, err := c.do(ctx, http.MethodGet, "/services", nil, nil)
	if err != nil {
		return nil, err
	}
	var items []catalog.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return items, nil
}

// CreateOrder calls POST /orders. idempotencyKey may be empty.
func (c *Client) CreateOrder(ctx context.Context, d order.Draft, idempotencyKey string) (order.Order, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return order.Order{}, err
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[order.IdempotencyKeyHeader] = idempotencyKey
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", payload, headers)
	if err != nil {
		return order.Order{}, err
	}
	var created order.Order
	if err := json.Unmarshal(body, &created); err != nil {
		return order.Order{}, fmt.Errorf("decode order: %w", err)
	}
	return created, nil
}

// ListOrders calls GET /orders.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/orders", nil, nil)
	if err != nil {
		return nil, err
	}
	var orders []order.Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
