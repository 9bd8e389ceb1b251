// Package client implements typed clients for the storefront's upstream
// REST APIs (auth, catalog, wishlist, orders). All calls go through the
// retrying HTTP client wrapped in a per-upstream circuit breaker, and
// non-2xx responses are mapped to application errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uvstore/storefront/pkg/httpclient"
)

// apiClient holds the plumbing shared by the upstream API clients.
type apiClient struct {
	baseURL string
	http    *httpclient.BreakerClient
	logger  *slog.Logger
}

func newAPIClient(baseURL, upstream string, logger *slog.Logger) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: httpclient.NewBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig(upstream),
			logger,
		),
		logger: logger,
	}
}

func (c *apiClient) url(path string) string {
	return c.baseURL + path
}

// getJSON issues a GET and decodes a 2xx response into out.
func (c *apiClient) getJSON(ctx context.Context, path, token, upstream string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doJSON(ctx, req, token, upstream, out)
}

// sendJSON issues a request with a JSON body and decodes a 2xx response into
// out (skipped when out is nil).
func (c *apiClient) sendJSON(ctx context.Context, method, path, token, upstream string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(ctx, req, token, upstream, out)
}

func (c *apiClient) doJSON(ctx context.Context, req *http.Request, token, upstream string, out any) error {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s request: %w", upstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, upstream)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", upstream, err)
	}
	return nil
}

// toCents converts an upstream decimal price to minor units. Upstream APIs
// quote prices in whole-currency decimals; internally everything is cents.
func toCents(price float64) int64 {
	if price < 0 {
		return 0
	}
	return int64(price*100 + 0.5)
}
