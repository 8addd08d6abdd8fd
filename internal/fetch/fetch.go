// Package fetch retrieves forum pages with a browser-like request signature.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/utils"
)

const maxBodyBytes = 5 << 20

// The forum rejects clients that do not look like a browser.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// Options configures a Fetcher.
type Options struct {
	Timeout time.Duration // per request
	RPS     float64       // <= 0 disables throttling
	Burst   int
	Client  *http.Client // optional, for tests
}

// Fetcher performs throttled GET requests.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New builds a Fetcher.
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Get returns the body of url. Any failure wraps domain.ErrFetch.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limiter: %w", domain.ErrFetch, url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrFetch, err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, url, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", domain.ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrFetch, url, err)
	}
	return body, nil
}
