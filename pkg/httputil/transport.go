package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/layershare/pkg/observability"
)

// Transport is an instrumented [http.RoundTripper].
type Transport struct {
	base      http.RoundTripper
	userAgent string
}

// NewTransport wraps base. A nil base uses [http.DefaultTransport].
func NewTransport(base http.RoundTripper, userAgent string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, userAgent: userAgent}
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

var _ http.RoundTripper = (*Transport)(nil)
