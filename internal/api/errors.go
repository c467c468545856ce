package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category is the failure shape of an API call.
type Category int

const (
	// CategoryNone means the call succeeded.
	CategoryNone Category = iota
	// CategoryHTTP means the server responded with a non-2xx status.
	CategoryHTTP
	// CategoryConnectivity means the request was sent but no response arrived.
	CategoryConnectivity
	// CategoryRequest means the request could not be built or sent.
	CategoryRequest
	// CategoryOther is any error not produced by this package.
	CategoryOther
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryHTTP:
		return "http"
	case CategoryConnectivity:
		return "connectivity"
	case CategoryRequest:
		return "request"
	default:
		return "other"
	}
}

// HTTPError is returned when the backend answered with a non-2xx status.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string // extracted from the body's message/error field, may be empty
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// ConnectivityError is returned when a request was sent but no response was received.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: no response from server: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RequestError is returned when a request could not be constructed or sent.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Classify returns the failure shape of err.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return CategoryHTTP
	}
	var connErr *ConnectivityError
	if errors.As(err, &connErr) {
		return CategoryConnectivity
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return CategoryRequest
	}
	return CategoryOther
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

const maxPlainMessage = 200

// extractMessage pulls a human message out of an error body. JSON bodies
// contribute their message or error field; short plain-text bodies are used
// as-is.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "{") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				return payload.Message
			}
			return payload.Error
		}
		return ""
	}
	if strings.HasPrefix(trimmed, "<") || len(trimmed) > maxPlainMessage {
		return ""
	}
	return trimmed
}
