// Package whazzup provides the wire models and HTTP client for the
// aviation-network datafeed: a snapshot endpoint with the currently
// connected stations and pilots, and a summary endpoint with per-station
// coverage polygons.
package whazzup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout for datafeed requests.
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerMinute spaces requests so the two endpoints polled
	// every 15 seconds stay well inside typical datafeed quotas.
	DefaultRequestsPerMinute = 30
)

// Config contains configuration for the datafeed client.
type Config struct {
	// FeedURL is the station/pilot snapshot endpoint.
	FeedURL string

	// CoverageURL is the coverage-summary endpoint.
	CoverageURL string

	// RequestsPerMinute caps outgoing request rate (default: 30).
	RequestsPerMinute int

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration
}

// Client fetches datafeed snapshots. It rate-limits its own requests but
// performs no retries: a failed fetch is reported to the caller and the
// next scheduled refresh is the retry.
type Client struct {
	feedURL     string
	coverageURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewClient creates a datafeed client from cfg, applying defaults for
// unset fields.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}
	perSecond := float64(cfg.RequestsPerMinute) / 60.0
	return &Client{
		feedURL:     cfg.FeedURL,
		coverageURL: cfg.CoverageURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(rate.Limit(perSecond), 2),
	}
}

// FetchFeed retrieves the current station/pilot snapshot. An empty feed is
// returned as-is; deciding whether to keep or discard it is the caller's
// policy, not the client's.
func (c *Client) FetchFeed(ctx context.Context) (*Feed, error) {
	var feed Feed
	if err := c.get(ctx, c.feedURL, &feed); err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	return &feed, nil
}

// FetchCoverage retrieves the coverage-summary records.
func (c *Client) FetchCoverage(ctx context.Context) ([]CoverageRecord, error) {
	var records []CoverageRecord
	if err := c.get(ctx, c.coverageURL, &records); err != nil {
		return nil, fmt.Errorf("fetch coverage: %w", err)
	}
	return records, nil
}

// get performs a rate-limited GET and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
