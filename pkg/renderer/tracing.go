package renderer

import (
	"context"

	"github.com/hvml/purcmc-go/pkg/endpoint"
	"github.com/hvml/purcmc-go/pkg/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName names the tracer resolved from the global
// OpenTelemetry provider when no Option supplies one. As in the
// teacher's module, no exporter is wired here: the default provider is
// the otel no-op tracer until a caller sets its own
// trace.TracerProvider.
const defaultTracerName = "github.com/hvml/purcmc-go/pkg/renderer"

func tracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}

// startSpan opens one span per dispatched request, with attributes for
// operation/target/status (SPEC_FULL.md §6.2).
func (r *Renderer) startSpan(ctx context.Context, ep *endpoint.Endpoint, req *protocol.Message) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "purcmc."+req.Operation,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("purcmc.endpoint_uri", ep.URI),
			attribute.String("purcmc.operation", req.Operation),
			attribute.String("purcmc.target", req.Target.String()),
			attribute.Int64("purcmc.target_value", int64(req.TargetValue)),
		),
	)
}

func (r *Renderer) endSpan(span trace.Span, resp *protocol.Message) {
	span.SetAttributes(attribute.Int("purcmc.status", resp.RetCode))
	if resp.RetCode >= 400 {
		span.SetStatus(codes.Error, protocol.StatusCode(resp.RetCode).String())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
