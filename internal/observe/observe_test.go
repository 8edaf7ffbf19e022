package observe_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/datagroom-ai/datagroom-mcp/internal/observe"
)

func newMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(t.Context()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func TestNewMetrics_AllInstrumentsCreated(t *testing.T) {
	t.Parallel()

	m := newMetrics(t)
	if m.GatewayRequestDuration == nil || m.GatewayRequests == nil ||
		m.ToolDuration == nil || m.ToolCalls == nil || m.HTTPRequestDuration == nil {
		t.Error("NewMetrics left an instrument unset")
	}
}

func TestCorrelationID_NoSpan(t *testing.T) {
	t.Parallel()

	if cid := observe.CorrelationID(t.Context()); cid != "" {
		t.Errorf("CorrelationID without a span = %q, want empty", cid)
	}
}

func TestCorrelationID_ActiveSpan(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	ctx, span := tp.Tracer("test").Start(t.Context(), "op")
	defer span.End()

	cid := observe.CorrelationID(ctx)
	if cid != span.SpanContext().TraceID().String() {
		t.Errorf("CorrelationID = %q, want the span's trace ID", cid)
	}
}

func TestMiddleware_PassesThroughAndRecordsStatus(t *testing.T) {
	t.Parallel()

	var ran bool
	handler := observe.Middleware(newMetrics(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want downstream status preserved", rec.Code)
	}
	if !ran {
		t.Error("downstream handler did not run")
	}
}

func TestMiddleware_SupportsFlush(t *testing.T) {
	t.Parallel()

	handler := observe.Middleware(newMetrics(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := w.(http.Flusher); !ok {
			t.Error("wrapped writer must implement http.Flusher for SSE responses")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mcp", nil))
}
