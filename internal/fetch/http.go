// Package fetch implements the HTTP and archive capabilities over net/http.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	weaveerrors "github.com/velvet-lang/weave/internal/errors"
	"github.com/velvet-lang/weave/internal/ports"
)

// DefaultTimeout bounds a single request when no client is supplied.
const DefaultTimeout = 30 * time.Second

// Client is a ports.HTTPFetcher backed by an http.Client.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

var _ ports.HTTPFetcher = (*Client)(nil)

// NewClient creates a Client with the given timeout. Zero uses DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  "weave",
	}
}

// open issues a GET and returns the body of a 200 response.
func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, weaveerrors.HTTPStatus(url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Get implements ports.HTTPFetcher.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}
