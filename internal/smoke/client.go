package smoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// ErrUnexpectedStatus reports a non-2xx response from the service.
var ErrUnexpectedStatus = errors.New("unexpected status")

// client wraps http.Client with the base URL and bearer token.
type client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	requests atomic.Int64
}

func newClient(cfg *Config) *client {
	return &client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// getJSON performs an authenticated GET and decodes the JSON response into v.
func (c *client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.do(req, v)
}

// postJSON performs an authenticated POST with a JSON body.
func (c *client) postJSON(ctx context.Context, path string, body, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.do(req, v)
}

func (c *client) do(req *http.Request, v any) error {
	c.requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s from %s: %s", ErrUnexpectedStatus, resp.Status, req.URL.Path, string(body))
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// waitHealthy polls the health endpoint until it answers or the context ends.
func (c *client) waitHealthy(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if err := c.getJSON(ctx, "/", &struct{}{}); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service never became healthy: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
