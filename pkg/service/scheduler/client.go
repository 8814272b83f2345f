package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hrops-lab/schedctl/pkg/utils/logging"
	"github.com/hrops-lab/schedctl/pkg/utils/safe"
)

const (
	// DefaultRetryLimit is the total number of attempts for a call that
	// keeps failing at the transport level
	DefaultRetryLimit = 3
	// DefaultRetryInterval is the fixed delay between attempts
	DefaultRetryInterval = time.Second
)

// Client wraps the scheduler backend HTTP API. Every call is retried on
// transport-level failure only; an HTTP error response is surfaced
// immediately with a normalized message.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryLimit    int
	retryInterval time.Duration
}

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryInterval sets the delay between retry attempts
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		c.retryInterval = d
	}
}

// WithRetryLimit sets the total attempt ceiling
func WithRetryLimit(n int) Option {
	return func(c *Client) {
		c.retryLimit = n
	}
}

// New creates a client for the scheduler backend at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("scheduler API base URL is required")
	}

	c := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    http.DefaultClient,
		retryLimit:    DefaultRetryLimit,
		retryInterval: DefaultRetryInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// APIError is an HTTP error response from the backend, carrying the
// server-supplied detail message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorBody is the error payload shape the backend uses. Most endpoints
// report via "detail", a few via "message".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// normalizeMessage picks the user-facing message: server detail first,
// then server message, then the static per-operation fallback.
func normalizeMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return fallback
}

// do runs one API call with the uniform retry policy. build must return a
// fresh request each time so that bodies can be re-sent. fallback is the
// static message used when neither the server nor the transport supplies
// one. When out is non-nil the 2xx response body is decoded into it.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), fallback string, out any) error {
	var lastErr error

	for attempt := 1; attempt <= c.retryLimit; attempt++ {
		req, err := build()
		if err != nil {
			return goerr.Wrap(err, fallback)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// No response at all: transport failure, eligible for retry
			lastErr = err
			if ctx.Err() != nil {
				return goerr.Wrap(ctx.Err(), fallback)
			}
			if attempt == c.retryLimit {
				break
			}

			logging.From(ctx).Warn("request failed, retrying",
				"attempt", attempt,
				"delay", c.retryInterval,
				"error", err.Error(),
			)
			select {
			case <-ctx.Done():
				return goerr.Wrap(ctx.Err(), fallback)
			case <-time.After(c.retryInterval):
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		safe.Close(ctx, resp.Body)
		if err != nil {
			return goerr.Wrap(err, fallback)
		}

		// An HTTP error response is never retried
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    normalizeMessage(body, fallback),
			}
		}

		if out != nil {
			if err := json.Unmarshal(body, out); err != nil {
				return goerr.Wrap(err, "failed to parse response", goerr.V("url", req.URL.String()))
			}
		}
		return nil
	}

	return goerr.Wrap(lastErr, fallback, goerr.V("attempts", c.retryLimit))
}

// ErrorMessage extracts the normalized user-facing message from a client
// error.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
