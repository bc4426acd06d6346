package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"wellpulse/internal/config"
)

// OTelConfig holds OpenTelemetry initialization options.
type OTelConfig struct {
	ServiceName      string
	ServiceVersion   string
	Environment      string
	TraceExporter    string // "stdout", "none"
	MetricExporter   string // "prometheus", "none"
	TraceSampleRatio float64
}

// DefaultOTelConfig returns the default observability configuration.
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:      "wellpulse",
		ServiceVersion:   config.AppVersion,
		Environment:      "development",
		TraceExporter:    "stdout",
		MetricExporter:   "prometheus",
		TraceSampleRatio: 0.1,
	}
}

// OTelProviders bundles the initialized providers and instruments.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
}

// InitializeOTel sets up tracing and metrics according to cfg. Exporters
// set to "none" leave the respective provider unset.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	providers := &OTelProviders{}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}

	if err := initializeTracing(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if logger != nil {
		logger.Info("OpenTelemetry initialized",
			slog.String("service", cfg.ServiceName),
			slog.String("trace_exporter", cfg.TraceExporter),
			slog.String("metric_exporter", cfg.MetricExporter))
	}

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRatio))),
		)
		otel.SetTracerProvider(tp)
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(cfg.ServiceName)
	default:
		providers.Tracer = otel.Tracer(cfg.ServiceName)
	}
	return nil
}

func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// Each provider scrapes its own registry, not the global one
		registry := promclient.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		otel.SetMeterProvider(mp)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(cfg.ServiceName)
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	default:
		providers.Meter = otel.Meter(cfg.ServiceName)
	}
	return nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TraceIDFromContext returns the active span's trace ID, or "".
func TraceIDFromContext(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// PipelineMetrics holds the instruments recorded by pipeline runs and
// the dashboard data layer.
type PipelineMetrics struct {
	runsTotal     metric.Int64Counter
	stepDuration  metric.Float64Histogram
	rowsProcessed metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on the meter.
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runs, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Completed pipeline runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Wall time per pipeline step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := meter.Int64Counter(
		"dataset_rows_processed_total",
		metric.WithDescription("Rows flowing out of each pipeline step"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		runsTotal:     runs,
		stepDuration:  stepDuration,
		rowsProcessed: rows,
	}, nil
}

// RecordRun counts one finished pipeline run.
func (m *PipelineMetrics) RecordRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStep records the duration and outcome of one pipeline step.
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.stepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordRows counts rows produced by a step.
func (m *PipelineMetrics) RecordRows(ctx context.Context, step string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsProcessed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("step", step)))
}
