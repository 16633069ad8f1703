// Package observability provides OpenTelemetry integration for distributed
// tracing.
//
// Traces are exported over OTLP HTTP to whatever collector the endpoint
// points at (an OpenTelemetry Collector, a vendor agent, anything speaking
// OTLP). Export is opt-in: with no endpoint configured the process runs
// with the default no-op tracer and pays nothing.
//
// Every run produces a span tree rooted at agent.run, with one
// agent.iteration span per reasoning step and one agent.dispatch span per
// tool call. The run ID is attached to the root span, so a trace can be
// matched against log lines.
//
// # Configuration
//
// Environment variables:
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint, e.g. localhost:4318
//
// Config file (~/.crossref/config.yaml):
//
//	telemetry:
//	  endpoint: "localhost:4318"
//	  service_name: "crossref"
//	  environment: "dev"
//
// # Verify the pipeline
//
//	curl -v http://localhost:4318/v1/traces
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config for OTLP trace export.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint (host:port). Empty disables export.
	Endpoint string
	// Environment is the deployment environment (dev, staging, prod)
	Environment string
	// ServiceName is the service name traces are reported under
	ServiceName string
}

// Setup installs a tracer provider that exports spans to the configured
// OTLP endpoint. With an empty endpoint, or when the exporter cannot be
// created, tracing stays disabled and the process keeps running.
//
// Returns a shutdown function that flushes pending spans.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if cfg.Endpoint == "" {
		slog.Debug("tracing disabled, no endpoint configured")
		return noop, nil
	}

	// The default resource reads these, so the service shows up under the
	// right name without plumbing a resource through by hand.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(), // collector endpoints are local or in-cluster
	)
	if err != nil {
		slog.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return noop, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)
	otel.SetTracerProvider(provider)

	slog.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return provider.Shutdown, nil
}
