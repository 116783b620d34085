package tracing

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the per-request id set by the API client.
const RequestIDHeader = "X-Request-ID"

// StartClientSpan starts the span for one logical API request (retries are
// recorded as events on it). A nil tracer yields a non-recording span.
func StartClientSpan(ctx context.Context, tracer trace.Tracer, method, path, requestID string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, SpanPrefixClient+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrHTTPPath, path),
			attribute.String(AttrRequestID, requestID),
		),
	)
}

// EndSpan records the response status and error, then ends span.
func EndSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= http.StatusBadRequest:
		span.SetStatus(codes.Error, http.StatusText(status))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Middleware returns chi middleware creating a server span per request.
// If tracer is nil it passes requests through untouched.
func Middleware(tracer trace.Tracer) func(http.Handler) http.Handler {
	if tracer == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), SpanPrefixServer+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(AttrHTTPMethod, r.Method),
					attribute.String(AttrHTTPPath, r.URL.Path),
				),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				span.SetAttributes(attribute.String(AttrRequestID, id))
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					span.SetName(SpanPrefixServer + r.Method + " " + pattern)
					span.SetAttributes(attribute.String(AttrHTTPRoute, pattern))
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			EndSpan(span, status, nil)
		})
	}
}
