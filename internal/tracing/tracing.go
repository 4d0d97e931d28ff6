package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies spans emitted by this module.
const ServiceName = "termstore"

// Span attribute keys.
const (
	AttrKeyTable       = "termstore.table"
	AttrKeyExecContext = "termstore.exec_context"
	AttrKeyErrorCode   = "termstore.error.code"
	AttrKeyRowCount    = "termstore.rows"
)

type ctxKey struct{}

// TracerFromCtx returns the tracer set for ctx, or a no-op tracer.
func TracerFromCtx(ctx context.Context) trace.Tracer {
	if tracer, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok {
		return tracer
	}
	return trace.NewNoopTracerProvider().Tracer("")
}

// SetTracer returns a context carrying tracer. A nil tracer stores a
// no-op tracer.
func SetTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	if existing, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok && existing == tracer {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, tracer)
}

// Start starts a span with the context's tracer.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return TracerFromCtx(ctx).Start(ctx, spanName, opts...)
}

// SetSpanError marks the span in ctx as failed. code is recorded as an
// attribute when non-empty.
func SetSpanError(ctx context.Context, code string, err error) {
	span := trace.SpanFromContext(ctx)
	if code != "" {
		span.SetAttributes(attribute.String(AttrKeyErrorCode, code))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// NewProvider returns an always-sampling tracer provider that writes
// finished spans as indented JSON to w. Callers must Shutdown the provider
// to flush spans.
func NewProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		// schemaless, so it merges with the default resource whatever its schema version
		resource.NewSchemaless(attribute.String("service.name", ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(exp),
	), nil
}
