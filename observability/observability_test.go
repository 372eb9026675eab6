package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/filekit/errors"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += int64(dp.Count)
				}
			}
		}
	}
	return sums
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("filekit")
	if tc.ServiceName != "filekit" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults %+v", tc)
	}
	mc := DefaultMeterConfig("filekit")
	if mc.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", mc.Interval)
	}
}

func TestNewMetricsNoop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordOperation(ctx, "put", "local", "local", "ok", time.Millisecond)
	m.RecordError(ctx, "get", "NOT_FOUND")
	m.RecordBinding(ctx, "local", "local")
	m.RecordRequestStart(ctx)
	m.RecordRequestEnd(ctx, "GET", "/files/:disk/*path", 200, time.Millisecond)
}

func TestOperationSuccess(t *testing.T) {
	rec := installRecorder(t)
	reader := sdkmetric.NewManualReader()
	m, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	_, op := StartOperation(context.Background(), m, "copy", "local", "local", "a.txt")
	op.SetTarget("b.txt")
	if err := op.End(nil); err != nil {
		t.Errorf("End should return nil, got %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 || spans[0].Name() != "filesystem.copy" {
		t.Fatalf("expected one filesystem.copy span, got %v", spans)
	}
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs[AttrDisk] != "local" || attrs[AttrPath] != "a.txt" || attrs[AttrTarget] != "b.txt" {
		t.Errorf("unexpected span attributes %v", attrs)
	}

	sums := collect(t, reader)
	if sums["filesystem.operation.total"] != 1 {
		t.Errorf("expected one operation, got %v", sums)
	}
	if sums["filesystem.operation.duration"] != 1 {
		t.Errorf("expected one duration sample, got %v", sums)
	}
	if sums["filesystem.error.total"] != 0 {
		t.Errorf("expected no errors, got %v", sums)
	}
}

func TestOperationError(t *testing.T) {
	rec := installRecorder(t)
	reader := sdkmetric.NewManualReader()
	m, _ := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))

	want := errors.NotFound("a.txt")
	_, op := StartOperation(context.Background(), m, "get", "s3", "s3", "a.txt")
	if got := op.End(want); got != want {
		t.Errorf("End should return the error unchanged, got %v", got)
	}

	span := rec.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", span.Status())
	}
	if len(span.Events()) == 0 {
		t.Error("expected recorded error event")
	}
	if collect(t, reader)["filesystem.error.total"] != 1 {
		t.Error("expected one error recorded")
	}
}

func TestOperationNilMetrics(t *testing.T) {
	_, op := StartOperation(context.Background(), nil, "exists", "gcs", "gcs", "x")
	op.End(fmt.Errorf("plain"))
	if op.Duration() < 0 {
		t.Error("duration must not be negative")
	}
}

func TestSetSpanErrorWithoutSpan(t *testing.T) {
	SetSpanError(context.Background(), fmt.Errorf("ignored"))
	SetSpanError(context.Background(), nil)
}

func TestAttributeKeyConstants(t *testing.T) {
	if AttrDisk != "filesystem.disk" || AttrDriver != "filesystem.driver" || AttrPath != "filesystem.path" {
		t.Error("unexpected attribute keys")
	}
}

func TestInitTracerAndMeter(t *testing.T) {
	prevTP := otel.GetTracerProvider()
	prevMP := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	for _, rate := range []float64{1.0, 0.5, 0} {
		cfg := DefaultTracerConfig("filekit")
		cfg.SampleRate = rate
		tp, err := InitTracer(context.Background(), cfg)
		if err != nil {
			t.Fatalf("InitTracer(%v): %v", rate, err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		_ = tp.Shutdown(shutdownCtx)
		cancel()
	}

	mp, err := InitMeter(context.Background(), DefaultMeterConfig("filekit"))
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = mp.Shutdown(shutdownCtx)
}
