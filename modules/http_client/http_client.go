package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/request"
)

// DefaultTimeout bounds a single HTTP fetch when the manifest sets none.
const DefaultTimeout = 30 * time.Second

// Settings configures the shared HTTP client.
type Settings struct {
	Timeout   time.Duration
	UserAgent string
}

// Fetcher loads http and https addresses with a shared, pooled client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewClient returns an *http.Client with a pooled transport.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// New creates a Fetcher from settings.
func New(settings Settings) *Fetcher {
	return &Fetcher{
		client:    NewClient(settings.Timeout),
		userAgent: settings.UserAgent,
	}
}

// NewWithClient creates a Fetcher around an existing client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads the address and discards the body. Any non-2xx status is
// an error.
func (f *Fetcher) Fetch(ctx context.Context, req request.Request) error {
	logger := ctxlog.FromContext(ctx).With("address", req.Address, "async", req.Async)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Address, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}

	logger.Debug("Making HTTP request.")
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("Received HTTP response.", "status", resp.Status, "bytes", n)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status fetching %s: %s", req.Address, resp.Status)
	}
	return nil
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
