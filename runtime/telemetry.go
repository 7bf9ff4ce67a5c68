package runtime

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry trace.Tracer with the run/cycle/tool span
// helpers the engine calls at its instrumentation points. Unlike the
// teacher's internal/observability.Tracer, this does not own exporter or
// TracerProvider setup: the host process is expected to have already called
// otel.SetTracerProvider (e.g. from an OTLP SDK exporter), the same
// composition every otel.Tracer(name) caller relies on. See DESIGN.md for
// why the exporter wiring itself stays out of CORE's scope.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer drawing spans from the globally configured
// TracerProvider under the given instrumentation name.
func NewTracer(name string) *Tracer {
	return &Tracer{tracer: otel.Tracer(name)}
}

// StartRun opens a span covering an entire run.
func (t *Tracer) StartRun(ctx context.Context, taskID, model string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "agentcore.run", trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(
		attribute.String("task_id", taskID),
		attribute.String("model", model),
	))
}

// StartCycle opens a span covering one cycle.
func (t *Tracer) StartCycle(ctx context.Context, taskID string, cycleIndex int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "agentcore.cycle", trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(
		attribute.String("task_id", taskID),
		attribute.Int("cycle", cycleIndex),
	))
}

// StartTool opens a span covering one tool dispatch.
func (t *Tracer) StartTool(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "agentcore.tool."+toolName, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(
		attribute.String("tool.name", toolName),
	))
}

// End closes span, recording err on it (setting span status to Error) when
// non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
