// Package api provides a client for the investment marketplace REST API
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/models"
)

const (
	DefaultBaseURL    = "http://localhost:3000"
	DefaultTimeout    = 15 * time.Second
	DefaultRateLimit  = 10 // requests per second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 250 * time.Millisecond
)

// Client implements the MarketplaceClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry budget for idempotent requests. Delay grows
// linearly with each attempt.
func WithRetry(maxRetries int, delay time.Duration) ClientOption {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		c.retryDelay = delay
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new marketplace client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientFromConfig creates a client from the api config section
func NewClientFromConfig(cfg common.APIConfig, logger *common.Logger) *Client {
	return NewClient(
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.GetTimeout()),
		WithRateLimit(cfg.RateLimit),
		WithRetry(cfg.MaxRetries, cfg.GetRetryDelay()),
		WithLogger(logger),
	)
}

// APIError represents a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unwrap maps auth and lookup statuses onto the model sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return models.ErrUnauthenticated
	case http.StatusForbidden:
		return models.ErrForbidden
	case http.StatusNotFound:
		return models.ErrNotFound
	}
	return nil
}

// FallbackEligible is true for server-side failures only.
func (e *APIError) FallbackEligible() bool {
	return e.StatusCode >= 500
}

// NetworkError represents a transport failure: connection refused, timeout,
// or a response that could not be read.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("marketplace API unreachable (endpoint: %s): %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FallbackEligible is always true for transport failures.
func (e *NetworkError) FallbackEligible() bool {
	return true
}

// request describes one API call
type request struct {
	method    string
	path      string
	token     string
	body      interface{}
	retryable bool
}

// do performs a rate-limited request and returns the raw 2xx body.
// Retryable requests are retried on network errors and 5xx responses.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := 1
	if r.retryable {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.retryDelay * time.Duration(attempt-1)
			c.logger.Debug().Str("path", r.path).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying marketplace API request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.once(ctx, r, payload)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !models.IsFallbackEligible(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, r request, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	c.logger.Debug().Str("method", r.method).Str("path", r.path).Msg("Marketplace API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A client timeout must not read as caller cancellation.
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s", c.httpClient.Timeout)
		}
		return nil, &NetworkError{Endpoint: r.path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: r.path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, body),
			Endpoint:   r.path,
		}
	}

	return body, nil
}

// errorMessage extracts a readable message from an error body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return http.StatusText(status)
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
