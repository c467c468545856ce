package api

import (
	"context"
	"net/http"
	"net/http/httputil"

	"github.com/google/uuid"

	"github.com/julianstephens/famtrack/internal/logger"
)

type noAuthKey struct{}

// withoutAuth marks a request context so no bearer token is attached.
// Login and signup use it.
func withoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, noAuthKey{}, true)
}

// authTransport attaches the session bearer token and a request ID.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", uuid.NewString())
	}
	if skip, _ := req.Context().Value(noAuthKey{}).(bool); !skip {
		if token := t.tokens.Token(); token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return t.base.RoundTrip(r)
}

// debugTransport dumps requests and responses to the debug log.
type debugTransport struct {
	base http.RoundTripper
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	log := logger.With("request_id", req.Header.Get("X-Request-ID"))
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		log.Debug("http request", "dump", redact(string(dump)))
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		log.Debug("http transport error", "url", req.URL.String(), "error", err)
		return nil, err
	}
	if dump, dErr := httputil.DumpResponse(resp, true); dErr == nil {
		log.Debug("http response", "dump", redact(string(dump)))
	}
	return resp, nil
}
