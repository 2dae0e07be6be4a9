package middleware

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/schemadesk/engine/internal/tracing"
)

// Tracing opens a server span per request, continuing any trace carried in
// the request headers. The span is renamed to the chi route after routing.
func Tracing() func(http.Handler) http.Handler {
	tracer := tracing.Tracer("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(parent, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(tracing.AttrHTTPMethod, r.Method),
					attribute.String(tracing.AttrHTTPUserAgent, r.UserAgent()),
					attribute.Int64(tracing.AttrHTTPRequestSize, r.ContentLength),
				),
			)
			defer span.End()

			ww := wrap(w)
			r = r.WithContext(ctx)
			next.ServeHTTP(ww, r)

			finishSpan(span, r.Method, routePattern(r), ww)
		})
	}
}

func finishSpan(span trace.Span, method, route string, ww *responseWriter) {
	span.SetName(method + " " + route)
	span.SetAttributes(
		attribute.String(tracing.AttrHTTPRoute, route),
		attribute.Int(tracing.AttrHTTPStatusCode, ww.statusCode),
		attribute.Int64(tracing.AttrHTTPResponseSize, ww.written),
	)
	if ww.statusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", ww.statusCode))
	}
}
