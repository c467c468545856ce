package api

import (
	"net/http"
	"time"
)

// Option configures the Client during construction.
type Option func(*Client)

// WithHTTPClient supplies a custom *http.Client. Its transport is wrapped,
// not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithDebugLogging dumps every request and response to the debug log.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) {
		c.debug = enabled
	}
}
