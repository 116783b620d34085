package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder(t *testing.T) (*tracetest.InMemoryExporter, trace.Tracer) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exp, tp.Tracer("test")
}

func attr(span tracetest.SpanStub, key string) attribute.Value {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestClientSpan(t *testing.T) {
	exp, tracer := newRecorder(t)

	_, span := StartClientSpan(context.Background(), tracer, http.MethodPost, "/contacts", "req-1")
	EndSpan(span, http.StatusCreated, nil)

	_, span = StartClientSpan(context.Background(), tracer, http.MethodPatch, "/contacts/7", "req-2")
	EndSpan(span, http.StatusConflict, nil)

	_, span = StartClientSpan(context.Background(), tracer, http.MethodGet, "/employees", "req-3")
	EndSpan(span, 0, errors.New("connection refused"))

	spans := exp.GetSpans()
	require.Len(t, spans, 3)

	require.Equal(t, "api.POST", spans[0].Name)
	require.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	require.Equal(t, codes.Ok, spans[0].Status.Code)
	require.Equal(t, "req-1", attr(spans[0], AttrRequestID).AsString())
	require.Equal(t, int64(201), attr(spans[0], AttrHTTPStatus).AsInt64())

	require.Equal(t, codes.Error, spans[1].Status.Code)
	require.Equal(t, "Conflict", spans[1].Status.Description)

	require.Equal(t, codes.Error, spans[2].Status.Code)
	require.Len(t, spans[2].Events, 1, "error recorded as an event")
}

func TestStartClientSpan_NilTracer(t *testing.T) {
	ctx, span := StartClientSpan(context.Background(), nil, http.MethodGet, "/x", "id")
	require.NotNil(t, ctx)
	require.False(t, span.IsRecording())
	EndSpan(span, http.StatusOK, nil)
}

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	exp, tracer := newRecorder(t)

	r := chi.NewRouter()
	r.Use(Middleware(tracer))
	r.Get("/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, trace.SpanFromContext(r.Context()).IsRecording())
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/contacts/7", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	require.Equal(t, "devserver.GET /contacts/{id}", spans[0].Name)
	require.Equal(t, trace.SpanKindServer, spans[0].SpanKind)
	require.Equal(t, "/contacts/{id}", attr(spans[0], AttrHTTPRoute).AsString())
	require.Equal(t, "abc", attr(spans[0], AttrRequestID).AsString())
	require.Equal(t, int64(404), attr(spans[0], AttrHTTPStatus).AsInt64())
	require.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestMiddleware_NilTracerPassesThrough(t *testing.T) {
	called := false
	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, called)
}
