package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "integritywatch/1.0"

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client is the HTTP client shared by every source. All requests go
// through one limiter so the combined request rate stays bounded.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// NewClient returns a client with per-request timeout and a requests per
// second budget. rps <= 0 disables throttling.
func NewClient(timeout time.Duration, rps float64) *Client {
	lim := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: lim,
	}
}

// Get fetches url and returns the body of a 200 response. Any transport or
// status failure is wrapped in ErrUpstream.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstream, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstream, url, resp.StatusCode)
	}
	return body, nil
}
