package tracing

// TracingConfig holds configuration for OpenTelemetry tracing
type TracingConfig struct {
	// Enabled enables/disables tracing
	Enabled bool

	// ServiceName is the service name for traces
	ServiceName string

	// ServiceVersion is the service version
	ServiceVersion string

	// Endpoint is the OTLP endpoint (host:port)
	Endpoint string

	// Insecure disables TLS for the exporter connection
	Insecure bool

	// Headers contains additional headers for OTLP export
	Headers map[string]string

	// ExporterType specifies the exporter type: "grpc" or "http"
	ExporterType string

	// SamplingRate is the percentage of traces kept; 0 keeps all
	SamplingRate float64

	// ProjectRoot is recorded as a resource attribute when set
	ProjectRoot string
}

// DefaultTracingConfig returns a default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Enabled:        false,
		ServiceName:    "schemadesk",
		ServiceVersion: "dev",
		Headers:        make(map[string]string),
		ExporterType:   "grpc",
	}
}

// samplingProbability converts a percentage into a ratio capped at 1
func samplingProbability(rate float64) float64 {
	if rate <= 0 {
		return 1
	}
	if p := rate / 100; p < 1 {
		return p
	}
	return 1
}
