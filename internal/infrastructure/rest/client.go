package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/transport"
)

const (
	defaultTimeout = 10 * time.Second

	// defaultMaxBodySize bounds how much of a response is read (1MB).
	defaultMaxBodySize = 1 << 20
)

// Response is a completed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxBodySize limits how many response bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// Client performs authenticated requests against one base URL.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	cfg        transport.HTTPConfig
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

// New creates a client. No request is made until Get is called.
func New(cfg transport.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.URL(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxBody:    defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs GET baseURL+path.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - path: Request path, joined to the base URL with exactly one slash
//
// Returns:
//   - *Response: The response, also returned alongside status errors
//   - error: A sentinel mapped from the status, or ErrRequestFailed
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path)
}

func (c *Client) do(ctx context.Context, method, path string) (*Response, error) {
	endpoint := c.endpoint(path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username() != "" {
		req.SetBasicAuth(c.cfg.Username(), c.cfg.Password())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrRequestFailed, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, c.maxBody)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if err := statusError(resp.StatusCode); err != nil {
		return out, fmt.Errorf("%w: %s %s: status %d", err, method, endpoint, resp.StatusCode)
	}
	return out, nil
}

func (c *Client) endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// statusError maps a status code to its sentinel, or nil for 2xx.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotModified:
		return ErrNotModified
	case code == http.StatusBadRequest:
		return ErrBadRequest
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrServerError
	default:
		return ErrUnexpectedStatus
	}
}

// Close releases idle connections. The client stays usable.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}
