package taxii

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single outbound TAXII call.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an upstream error body is kept for logging.
	maxErrorBody = 64 * 1024
)

// Doer performs one HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues built TAXII requests. It never retries.
type Client struct {
	httpClient Doer
	limiter    *rate.Limiter
	userAgent  string
	logger     arbor.ILogger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the transport used for outbound calls.
func WithHTTPClient(httpClient Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit caps outbound calls per second. Zero or less disables limiting.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header of outbound calls.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a TAXII client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Response is a completed 2xx TAXII response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Execute performs exactly one outbound call for req.
// Failures to complete the call are *TransportError; non-2xx answers are *UpstreamError.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.logger != nil {
			c.logger.Error().
				Err(err).
				Str("operation", string(req.Operation)).
				Str("method", req.Method).
				Str("url", req.URL).
				Msg("TAXII request failed")
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug().
			Str("operation", string(req.Operation)).
			Str("method", req.Method).
			Str("url", req.URL).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("TAXII response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upstreamErr := &UpstreamError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(errBody),
		}
		if c.logger != nil {
			c.logger.Warn().
				Str("operation", string(req.Operation)).
				Int("status", resp.StatusCode).
				Str("body", upstreamErr.Body).
				Msg("TAXII server error")
		}
		return nil, upstreamErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// statusText extracts the reason phrase from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
