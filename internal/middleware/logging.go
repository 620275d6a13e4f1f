// Package middleware provides composable http.RoundTripper wrappers for the
// outbound introspection client, following the func(next) next pattern.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

// RoundTripperFunc adapts an ordinary function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Logger returns a round-tripper that emits one structured log line per
// introspection request, including method, url, status and latency. Every
// request is tagged with a fresh X-Request-Id so it can be matched against
// the remote daemon's own logs.
func Logger(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		reqID := newRequestID()

		r = r.Clone(r.Context())
		r.Header.Set("X-Request-Id", reqID)

		resp, err := next.RoundTrip(r)
		if err != nil {
			slog.Debug("introspect request failed",
				"request_id", reqID,
				"method", r.Method,
				"url", r.URL.String(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return nil, err
		}

		slog.Debug("introspect request",
			"request_id", reqID,
			"method", r.Method,
			"url", r.URL.String(),
			"status", resp.StatusCode,
			"content_length", resp.ContentLength,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, nil
	})
}

func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
