// Package api is the HTTP client every back office screen talks to.
//
// Requests carry a bearer token and an X-Request-ID. GET requests are retried
// with exponential backoff on transport errors and 5xx responses; writes are
// sent exactly once. Non-2xx responses are returned as *Error, whose
// ServerDetail is the message the server put in the body.
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

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/backoffice/internal/log"
	"github.com/zjrosen/backoffice/internal/tracing"
)

const (
	// DefaultTimeout bounds every request, including a slow server.
	DefaultTimeout = 15 * time.Second
	// DefaultRetries is the number of GET attempts.
	DefaultRetries = 3

	maxErrorBody = 64 << 10
)

// Client is a JSON REST client rooted at a base URL.
type Client struct {
	baseURL string
	token   string
	retries uint
	hc      *http.Client
	tracer  trace.Tracer
	backoff func() backoff.BackOff
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithRetries sets how many times a GET is attempted.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = uint(n)
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithBackOff replaces the retry schedule. Tests use a zero backoff.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) { c.backoff = fn }
}

// New returns a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: DefaultRetries,
		hc:      &http.Client{Timeout: DefaultTimeout},
		tracer:  otel.Tracer("github.com/zjrosen/backoffice/internal/api"),
		backoff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root all paths are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Response is a successful (2xx) response.
type Response struct {
	Status int
	Header http.Header
	Data   json.RawMessage
}

// Decode unmarshals the body into v. Numbers decode as json.Number so ids and
// amounts survive unchanged.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return errors.New("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(r.Data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Get fetches path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post sends body to path.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Patch sends a partial update.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

// Put sends a full replacement.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete removes path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		payload = b
	}

	requestID := c.newID()
	ctx, span := tracing.StartClientSpan(ctx, c.tracer, method, path, requestID)

	attempts := uint(1)
	if method == http.MethodGet {
		attempts = c.retries
	}

	var tries int
	op := func() (*Response, error) {
		tries++
		if tries > 1 {
			span.AddEvent(tracing.EventRetry, trace.WithAttributes(attribute.Int(tracing.AttrRetryCount, tries-1)))
		}
		resp, err := c.send(ctx, method, path, requestID, payload)
		if err == nil {
			return resp, nil
		}
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn(log.CatAPI, "retrying request", "method", method, "path", path,
				"request_id", requestID, "error", err.Error(), "after", next.String())
		}),
	)

	status := 0
	var apiErr *Error
	switch {
	case resp != nil:
		status = resp.Status
	case errors.As(err, &apiErr):
		status = apiErr.Status
	}
	if err != nil && apiErr == nil {
		tracing.EndSpan(span, status, err)
	} else {
		tracing.EndSpan(span, status, nil)
	}

	if err != nil {
		log.ErrorErr(log.CatAPI, "request failed", err, "method", method, "path", path,
			"request_id", requestID, "status", status, "tries", tries)
		return nil, err
	}
	log.Debug(log.CatAPI, "request", "method", method, "path", path,
		"request_id", requestID, "status", status)
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path, requestID string, payload []byte) (*Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(tracing.RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody*16))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp := &Response{Status: res.StatusCode, Header: res.Header, Data: data}
	if res.StatusCode/100 != 2 {
		if len(data) > maxErrorBody {
			resp.Data = data[:maxErrorBody]
		}
		return nil, newError(resp)
	}
	return resp, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}
