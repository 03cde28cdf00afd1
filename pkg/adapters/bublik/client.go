// Package bublik fetches raw log trees from a Bublik server.
package bublik

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ts-factory/bublik-logtree/internal/logging"
	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 2
	DefaultBackoff = 500 * time.Millisecond

	// DefaultMaxPayload caps the response body; large nightly runs stay well below it.
	DefaultMaxPayload = 256 << 20
)

// Client implements ports.TreeSource against the Bublik REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	retries int
	backoff time.Duration
	headers http.Header
	logger  *slog.Logger

	maxPayload int64
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per-attempt timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		hc := *cl.http
		hc.Timeout = d
		cl.http = &hc
	}
}

// WithMaxPayload sets the largest accepted response body in bytes.
func WithMaxPayload(n int64) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxPayload = n
		}
	}
}

// WithRetries sets how many times a failed attempt is repeated.
func WithRetries(n int) Option {
	return func(cl *Client) {
		if n >= 0 {
			cl.retries = n
		}
	}
}

// WithBackoff sets the fixed delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) {
		cl.backoff = d
	}
}

// WithHeader adds a header to every request (e.g. a session cookie).
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.headers.Add(key, value)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a client for the server at baseURL, e.g. "https://ts-factory.io/bublik".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: DefaultTimeout},
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		headers: make(http.Header),
		logger:  logging.NewNop(),

		maxPayload: DefaultMaxPayload,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TreeURL returns the endpoint serving the log tree of runID.
func (c *Client) TreeURL(runID int64) string {
	return c.base.JoinPath("api", "v2", "tree", strconv.FormatInt(runID, 10)).String() + "/"
}

// errRetryable marks failures worth another attempt.
var errRetryable = errors.New("retryable")

// Fetch downloads the raw tree payload for runID.
// 404 maps to domain.ErrRunNotFound. Transport errors and 5xx responses are
// retried; once attempts run out the error wraps domain.ErrUpstream.
func (c *Client) Fetch(ctx context.Context, runID int64) ([]byte, error) {
	target := c.TreeURL(runID)
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying upstream request",
				"run_id", runID,
				"attempt", attempt,
				"err", lastErr,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff):
			}
		}

		body, err := c.do(ctx, target, requestID)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, errRetryable) {
			if errors.Is(err, domain.ErrRunNotFound) {
				return nil, fmt.Errorf("%w: %d", domain.ErrRunNotFound, runID)
			}
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: run %d after %d attempts: %v", domain.ErrUpstream, runID, c.retries+1, lastErr)
}

func (c *Client) do(ctx context.Context, target, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrRunNotFound
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrUpstream, resp.StatusCode)
	}

	// One byte past the limit tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", errRetryable, err)
	}
	if int64(len(body)) > c.maxPayload {
		return nil, fmt.Errorf("%w: payload exceeds limit of %d bytes", domain.ErrUpstream, c.maxPayload)
	}
	return body, nil
}
