package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eliteadvisers/portal/internal/validator"
)

// HeaderRequestID carries the request correlation id.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID makes outbound calls made with ctx reuse id instead of
// generating a new one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// envelope is the common {success, message} wrapper of every response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client talks to the advisory API. All URLs, including attachment links,
// are resolved against a single base.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a Client. A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, log)
}

// NewWithHTTPClient creates a Client over a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		log:     log.With().Str("component", "api_client").Logger(),
	}
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL turns an API-relative path (e.g. an attachment url) into an
// absolute link. Absolute URLs are returned unchanged.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// do performs one call. out, when non-nil, receives the full response body
// and is validated with its binding tags.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	reqID := requestIDFrom(ctx)
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		// The API expects the raw token, without a scheme.
		req.Header.Set("Authorization", token)
	}

	log := c.log.With().Str("method", method).Str("path", path).Str("request_id", reqID).Logger()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("Request failed")
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("API call")

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &TransportError{Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.Success {
		return &FailureError{Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode payload: %w", err)}
	}
	if err := validator.Struct(out); err != nil {
		return &TransportError{Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}
