// Package httpclient builds the instrumented http.Client shared by every
// outgoing API call.
package httpclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// New returns an http.Client whose transport tags every request with an
// X-Request-ID and records OpenTelemetry spans and metrics. Options configure
// the instrumented transport, typically the tracer and meter providers.
func New(timeout time.Duration, opts ...otelhttp.Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(RequestID(http.DefaultTransport), opts...),
	}
}

// requestIDTransport decorates a RoundTripper with X-Request-ID headers.
type requestIDTransport struct {
	base http.RoundTripper
}

// RequestID returns a RoundTripper that ensures every outgoing request
// carries a unique identifier. If the caller already set a valid
// X-Request-ID header, that value is kept. Otherwise a new UUID v4 is
// generated. Caller-set values are validated: at most 128 bytes, printable
// ASCII only (0x20-0x7E).
func RequestID(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &requestIDTransport{base: base}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get("X-Request-ID")
	if !isValidRequestID(id) {
		// Clone before mutating: RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-ID", uuid.New().String())
	}
	return t.base.RoundTrip(req)
}

// isValidRequestID checks that id is non-empty, at most 128 bytes, and
// contains only printable ASCII (0x20-0x7E).
func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}
