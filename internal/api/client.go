// Package api is the single point of outbound HTTP to the famtrack backend.
// Every backend operation is one method on Client. There is no retry logic:
// failures surface as *HTTPError, *ConnectivityError or *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/julianstephens/famtrack/internal/constants"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/metrics"
)

// TokenSource supplies the bearer token for the current session. An empty
// token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Client calls the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	debug   bool
}

// New constructs a Client for baseURL (e.g. http://localhost:8080/api).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.debug {
		base = &debugTransport{base: base}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	wrapped := *c.http
	wrapped.Transport = &authTransport{base: base, tokens: tokens}
	c.http = &wrapped
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// call performs one JSON round trip. body may be nil; out may be nil to
// discard the response, or *string to capture it as text.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	defer func() {
		metrics.APIRequests.WithLabelValues(op, metrics.Outcome(err)).Inc()
		if err != nil {
			logger.Debug("api call failed", "op", op, "method", method, "path", path, "error", err)
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, mErr := json.Marshal(body)
		if mErr != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("encode body: %w", mErr)}
		}
		reader = bytes.NewReader(buf)
	}

	req, rErr := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if rErr != nil {
		return &RequestError{Op: op, Err: rErr}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, dErr := c.http.Do(req)
	if dErr != nil {
		if isRequestFailure(dErr) {
			return &RequestError{Op: op, Err: dErr}
		}
		return &ConnectivityError{Op: op, Err: dErr}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return &ConnectivityError{Op: op, Err: fmt.Errorf("read response: %w", readErr)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(payload),
			Body:       string(payload),
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(payload)
		return nil
	}
	if uErr := json.Unmarshal(payload, out); uErr != nil {
		return fmt.Errorf("%s: decode response: %w", op, uErr)
	}
	return nil
}

// isRequestFailure reports whether a transport error means the request never
// left the client (bad scheme, malformed URL) rather than went unanswered.
func isRequestFailure(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return false
	}
	msg := urlErr.Err.Error()
	return strings.Contains(msg, "unsupported protocol scheme") ||
		strings.Contains(msg, "no Host in request URL")
}
