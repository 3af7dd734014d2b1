package tumblr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/tumblrsearch/internal/domain"
	"github.com/ppiankov/tumblrsearch/internal/logger"
	"github.com/ppiankov/tumblrsearch/internal/metrics"
	"github.com/ppiankov/tumblrsearch/internal/privacy"
)

const (
	DefaultTimeout = 30 * time.Second
	userAgent      = "tumblrsearch/1.0"
	maxErrorBody   = 512
)

// Fetcher performs one GET against the API and decodes the envelope.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// Client is the HTTP Fetcher. It never retries; a failed call is reported as
// a *domain.FetchError.
type Client struct {
	http    *http.Client
	log     logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client. timeout <= 0 selects DefaultTimeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		http: &http.Client{Timeout: timeout},
		log:  logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs rawURL and decodes the response envelope. Transport errors,
// non-200 statuses, malformed JSON and a missing "response" object all fail
// with *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	safeURL := privacy.RedactURL(rawURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: safeURL, Err: fmt.Errorf("create request: %w", redactURLError(err))}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeTransport, time.Since(start))
		c.log.Warn("tumblr request failed", logger.String("url", safeURL), logger.Error(redactURLError(err)))
		return nil, &domain.FetchError{URL: safeURL, Err: redactURLError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ObserveFetch(metrics.OutcomeHTTP, time.Since(start))
		body := readErrorBody(resp.Body)
		c.log.Warn("tumblr returned error status",
			logger.String("url", safeURL),
			logger.Int("status", resp.StatusCode),
		)
		return nil, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Body: body}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeDecode, time.Since(start))
		return nil, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Response == nil {
		c.metrics.ObserveFetch(metrics.OutcomeDecode, time.Since(start))
		return nil, &domain.FetchError{URL: safeURL, StatusCode: resp.StatusCode, Err: errors.New(`envelope has no "response" object`)}
	}

	c.metrics.ObserveFetch(metrics.OutcomeOK, time.Since(start))
	c.log.Debug("tumblr posts fetched",
		logger.String("url", safeURL),
		logger.Int("posts", len(out.Response.Posts)),
		logger.Int("total_posts", out.Response.TotalPosts),
		logger.Duration("duration", time.Since(start)),
	)
	return &out, nil
}

// redactURLError hides credentials that net/http copies into *url.Error.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = privacy.RedactURL(ue.URL)
	}
	return err
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
