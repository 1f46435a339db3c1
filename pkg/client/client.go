// Package client provides the item store HTTP fetcher: one GET per address
// with a per-fetch deadline, JSON item decoding and failure classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for fetch operations.
var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hn_fetch_requests_total",
		Help: "Total item fetches by outcome (ok, absent, timeout, transport, parse)",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hn_fetch_duration_seconds",
		Help:    "Item fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

const (
	// DefaultTimeout is the per-fetch deadline.
	DefaultTimeout = 1000 * time.Second

	// DefaultUserAgent is sent when the caller does not override it.
	DefaultUserAgent = "hn-fetch/0.1.0"
)

// Config holds the client configuration.
type Config struct {
	// Timeout bounds one fetch, from request start until the body is read.
	Timeout time.Duration

	// UserAgent header sent with every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client fetches single items. It is safe for concurrent use; concurrent
// fetches share only the underlying connection pool.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	return &Client{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		config: cfg,
		logger: log.With().Str("component", "hn-client").Logger(),
	}, nil
}

// Fetch downloads and decodes the JSON record at url.
//
// A body of null (or an empty body) is a valid outcome: Fetch returns a nil
// item and a nil error. Failures are returned as *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (*Item, error) {
	startTime := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(startTime).Seconds())
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(newFetchError(url, ErrorClassTransport, 0, fmt.Errorf("create request: %w", err)))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", url).Msg("Fetching item")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(newFetchError(url, classifyError(ctx, fetchCtx, err), 0, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.fail(newFetchError(url, ErrorClassTransport, resp.StatusCode, errors.New(resp.Status)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(newFetchError(url, classifyError(ctx, fetchCtx, err), resp.StatusCode,
			fmt.Errorf("read response body: %w", err)))
	}

	item, err := decodeItem(body)
	if err != nil {
		return nil, c.fail(newFetchError(url, ErrorClassParse, resp.StatusCode, err))
	}

	if item == nil {
		fetchRequestsTotal.WithLabelValues("absent").Inc()
		c.logger.Debug().Str("url", url).Msg("Item absent")
		return nil, nil
	}

	fetchRequestsTotal.WithLabelValues("ok").Inc()
	return item, nil
}

// fail records the failure and hands it back.
func (c *Client) fail(err *FetchError) error {
	fetchRequestsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Debug().
		Err(err.Err).
		Str("url", err.URL).
		Str("error_class", string(err.Class)).
		Int("status", err.StatusCode).
		Msg("Fetch failed")
	return err
}

// classifyError separates this fetch's own deadline from every other
// failure. A cancelled parent context is reported as transport: the caller
// cancelled, the fetch did not time out.
func classifyError(parent, fetchCtx context.Context, err error) ErrorClass {
	if parent.Err() != nil {
		return ErrorClassTransport
	}
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassTransport
}

// decodeItem parses a response body. Empty and null bodies yield (nil, nil).
func decodeItem(body []byte) (*Item, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	if body[0] != '{' {
		return nil, fmt.Errorf("expected JSON object or null, got %q", truncate(body, 32))
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &item, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Close releases idle pooled connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
