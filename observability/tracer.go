package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer opens spans around scheduler steps, replacing the teacher's
// hand-rolled SigNozSpanExporter with the standard OpenTelemetry API.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps the tracer registered under instrumentationName in
// the global OpenTelemetry provider. Callers own configuring that
// provider's exporter (OTLP, stdout, or otherwise) before this is
// called.
func NewTracer(instrumentationName string) *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// StartStep opens a span named after the step. Callers must End the
// returned span once the step's executor completes.
func (t *Tracer) StartStep(ctx context.Context, stepName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, stepName)
}
