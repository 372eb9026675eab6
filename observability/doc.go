// Package observability provides OpenTelemetry tracing and metrics for
// storage operations.
//
// Tracing and metrics export over OTLP HTTP:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("filekit"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("filekit"))
//	defer mp.Shutdown(ctx)
//
// Every façade call is wrapped in an Operation, which opens a span named
// filesystem.<op> and records the filesystem.operation.* instruments:
//
//	ctx, op := observability.StartOperation(ctx, metrics, "put", "local", "local", "a.txt")
//	err := driver.Put(ctx, "a.txt", data)
//	op.End(err)
package observability
