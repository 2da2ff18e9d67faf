// Package abbrev resolves journal names to their ISO abbreviations via an
// external lookup service, backed by a local SQLite cache.
package abbrev

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the abbreviation service endpoint. The journal name
	// is appended path-escaped; the response body is the abbreviation.
	DefaultBaseURL = "https://abbreviso.toolforge.org/abbreviso/a/"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second

	// RateLimit keeps lookups polite to the shared service.
	RateLimit = 2.0
)

// Client is a rate-limited HTTP client for the abbreviation service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// NewClient creates an abbreviation service client. The base URL can be
// overridden with the BIBTIDY_ABBREV_URL environment variable.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    DefaultBaseURL,
	}

	if base := os.Getenv("BIBTIDY_ABBREV_URL"); base != "" {
		c.baseURL = base
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup fetches the abbreviation for a journal name.
func (c *Client) Lookup(ctx context.Context, name string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(name), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("abbreviation service returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}

	abbrev := strings.TrimSpace(string(body))
	if abbrev == "" {
		return "", fmt.Errorf("abbreviation service returned an empty result for %q", name)
	}
	return abbrev, nil
}
