package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rs/zerolog"
	"github.com/schemadesk/engine/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Provider owns the process-wide tracer provider. A disabled provider hands
// out no-op tracers.
type Provider struct {
	tp     *sdktrace.TracerProvider
	config TracingConfig
	log    zerolog.Logger
}

// NewProvider installs an OTLP-exporting tracer provider as the global one
// when config.Enabled is set
func NewProvider(ctx context.Context, config TracingConfig) (*Provider, error) {
	p := &Provider{config: config, log: logger.WithComponent("tracing")}
	if !config.Enabled {
		return p, nil
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
	}
	if config.ProjectRoot != "" {
		attrs = append(attrs, attribute.String(AttrProjectRoot, config.ProjectRoot))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	ratio := samplingProbability(config.SamplingRate)
	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.log.Info().
		Str("endpoint", config.Endpoint).
		Str("exporter", config.ExporterType).
		Float64("sampling_ratio", ratio).
		Msg("Tracing enabled")

	return p, nil
}

// newExporter builds the OTLP span exporter named by config.ExporterType
func newExporter(ctx context.Context, config TracingConfig) (sdktrace.SpanExporter, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	switch config.ExporterType {
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.Endpoint)}
		if config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(config.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(config.Headers))
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create http exporter: %w", err)
		}
		return exp, nil

	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.Endpoint)}
		if config.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(config.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(config.Headers))
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create grpc exporter: %w", err)
		}
		return exp, nil

	default:
		return nil, fmt.Errorf("unknown tracing exporter: %s", config.ExporterType)
	}
}

// GetTracer returns a tracer for a component
func (p *Provider) GetTracer(name string) trace.Tracer {
	if p.tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Shutdown flushes pending spans. Without a deadline on ctx it waits at
// most five seconds.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	p.log.Info().Msg("Tracing stopped")
	return nil
}

// IsEnabled returns true if spans are exported
func (p *Provider) IsEnabled() bool {
	return p.tp != nil
}
