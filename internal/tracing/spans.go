package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the global tracer for a component
func Tracer(component string) trace.Tracer {
	return otel.Tracer("schemadesk." + component)
}

// StartSpan starts an internal span named "<component>.<op>"
func StartSpan(ctx context.Context, component, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer(component).Start(ctx, component+"."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(attribute.String(AttrOperation, op))
	span.SetAttributes(attrs...)
	return ctx, span
}

// End records err on the span, if any, and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrStatus, "error"))
	} else {
		span.SetAttributes(attribute.String(AttrStatus, "ok"))
	}
	span.End()
}

// SpanFromContext returns the span from context if it exists
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
