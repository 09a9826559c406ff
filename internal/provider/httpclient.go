package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Quoteflow/1.0"
)

// httpClient is the shared GET helper used by the REST adapters. Every call
// carries the fixed per-call timeout and is smoothed by a per-provider
// token bucket so short bursts do not hammer an upstream even when the
// per-minute budget still has room.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
}

// newHTTPClient builds a client allowing perSecond requests with the given
// burst. A zero perSecond disables smoothing.
func newHTTPClient(perSecond float64, burst int) *httpClient {
	c := &httpClient{client: &http.Client{Timeout: defaultTimeout}}
	if perSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return c
}

// getJSON performs a GET against url and returns the raw body. Non-2xx
// statuses, timeouts and transport failures all come back as errors for the
// adapter to convert into a failed outcome. Headers may be nil.
func (c *httpClient) getJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate smoothing wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	return body, nil
}
