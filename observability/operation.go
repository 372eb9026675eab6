package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/filekit/errors"
)

// Operation tracks one storage call from start to End.
type Operation struct {
	Name   string
	Disk   string
	Driver string
	Start  time.Time

	ctx     context.Context
	span    trace.Span
	metrics *Metrics
}

// StartOperation opens a span named filesystem.<name>. metrics may be nil.
func StartOperation(ctx context.Context, metrics *Metrics, name, disk, driver, path string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanPrefix+name, trace.WithAttributes(
		attribute.String(AttrOperation, name),
		attribute.String(AttrDisk, disk),
		attribute.String(AttrDriver, driver),
		attribute.String(AttrPath, path),
	))
	return ctx, &Operation{
		Name:    name,
		Disk:    disk,
		Driver:  driver,
		Start:   time.Now(),
		ctx:     ctx,
		span:    span,
		metrics: metrics,
	}
}

// SetTarget records the destination path of copy and move.
func (o *Operation) SetTarget(path string) {
	o.span.SetAttributes(attribute.String(AttrTarget, path))
}

// End closes the span and records metrics. It returns err unchanged so
// callers can write `return op.End(err)`.
func (o *Operation) End(err error) error {
	status := "ok"
	if err != nil {
		status = "error"
		code := string(errors.ToAppError(err).Code)
		o.span.SetAttributes(attribute.String(AttrErrorCode, code))
		SetSpanError(o.ctx, err)
		if o.metrics != nil {
			o.metrics.RecordError(o.ctx, o.Name, code)
		}
	}
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordOperation(o.ctx, o.Name, o.Disk, o.Driver, status, time.Since(o.Start))
	}
	return err
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.Start)
}
