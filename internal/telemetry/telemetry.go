// Package telemetry reports unexpected errors as OpenTelemetry spans.
//
// Telemetry is opt-in: without an endpoint Setup hands back a no-op tracer
// provider and nothing leaves the process.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/dmitrijs2005/charkeeper"

// Reporter receives errors nobody else handles.
type Reporter interface {
	Report(ctx context.Context, op string, err error, kv ...attribute.KeyValue)
}

// OTelReporter records each reported error as a span with error status.
type OTelReporter struct {
	tracer trace.Tracer
}

func NewReporter(tp trace.TracerProvider) *OTelReporter {
	return &OTelReporter{tracer: tp.Tracer(tracerName)}
}

// Report records err under the span name op. A nil err is ignored.
func (r *OTelReporter) Report(ctx context.Context, op string, err error, kv ...attribute.KeyValue) {
	if err == nil {
		return
	}
	_, span := r.tracer.Start(ctx, op, trace.WithAttributes(kv...))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// Nop returns a Reporter that drops everything.
func Nop() Reporter {
	return NewReporter(noop.NewTracerProvider())
}

// Setup installs an OTLP/HTTP tracer provider for endpoint. With an empty
// endpoint it returns a no-op provider. The returned shutdown flushes
// pending spans and should be deferred by the caller.
func Setup(ctx context.Context, endpoint, serviceName string) (trace.TracerProvider, func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	if endpoint == "" {
		return noop.NewTracerProvider(), noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return nil, noopShutdown, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, tp.Shutdown, nil
}
