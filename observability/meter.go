package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/filekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment.
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows plain HTTP to the collector.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global meter provider. The caller shuts it
// down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the storage and file-server instruments.
type Metrics struct {
	operationTotal    metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorTotal        metric.Int64Counter
	bindingTotal      metric.Int64Counter
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
	requestActive     metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	operationTotal, err := meter.Int64Counter("filesystem.operation.total",
		metric.WithDescription("Storage operations by disk, driver, operation and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem.operation.total counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("filesystem.operation.duration",
		metric.WithDescription("Duration of storage operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem.operation.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("filesystem.error.total",
		metric.WithDescription("Failed storage operations by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem.error.total counter: %w", err)
	}

	bindingTotal, err := meter.Int64Counter("filesystem.binding.total",
		metric.WithDescription("Driver bindings built by disk and driver"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating filesystem.binding.total counter: %w", err)
	}

	requestTotal, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("File server requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of file server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.server.request.active",
		metric.WithDescription("In-flight file server requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.active counter: %w", err)
	}

	return &Metrics{
		operationTotal:    operationTotal,
		operationDuration: operationDuration,
		errorTotal:        errorTotal,
		bindingTotal:      bindingTotal,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestActive:     requestActive,
	}, nil
}

// RecordOperation records a completed storage operation.
func (m *Metrics) RecordOperation(ctx context.Context, op, disk, driver, status string, duration time.Duration) {
	attrs := operationAttrs(op, disk, driver)
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("status", status))...))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordError records a failed operation by error code.
func (m *Metrics) RecordError(ctx context.Context, op, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("code", code),
	))
}

// RecordBinding records a new driver binding.
func (m *Metrics) RecordBinding(ctx context.Context, disk, driver string) {
	m.bindingTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("disk", disk),
		attribute.String("driver", driver),
	))
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the result.
func (m *Metrics) RecordRequestEnd(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Int("status", status))...))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
