package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func roundTrip(t *testing.T, prepare func(*http.Request)) string {
	t.Helper()
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	if prepare != nil {
		prepare(req)
	}

	client := &http.Client{Transport: RequestID(nil)}
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return got
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	got := roundTrip(t, nil)
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "generated request ID should be a UUID")
}

func TestRequestID_ValidCallerValueKept(t *testing.T) {
	got := roundTrip(t, func(r *http.Request) {
		r.Header.Set("X-Request-ID", "trace-42")
	})
	assert.Equal(t, "trace-42", got)
}

func TestRequestID_InvalidCallerValueReplaced(t *testing.T) {
	got := roundTrip(t, func(r *http.Request) {
		r.Header.Set("X-Request-ID", "bad\x01id")
	})
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestNew_UsesConfiguredTracerProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	client := New(time.Second, otelhttp.WithTracerProvider(tp))
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.NotEmpty(t, recorder.Ended(), "request should record a span on the configured provider")
}

func TestIsValidRequestID(t *testing.T) {
	assert.False(t, isValidRequestID(""))
	assert.True(t, isValidRequestID("abc-123"))
	assert.False(t, isValidRequestID(string(make([]byte, 129))))
}
