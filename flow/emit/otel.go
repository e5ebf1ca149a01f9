package emit

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns each event into a zero-duration OpenTelemetry span,
// adapted from graph/emit/otel.go. Useful when the executor is embedded in
// a larger traced service and node lifecycle events should appear alongside
// request spans.
type OTelEmitter struct {
	tracer trace.Tracer
}

func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), string(event.Kind))
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", event.RunID),
		attribute.String("node_id", event.NodeID),
	)
	if event.Kind == NodeErrored {
		span.SetStatus(codes.Error, "node error")
	}
	for k, v := range event.Meta {
		if s, ok := v.(string); ok {
			span.SetAttributes(attribute.String(k, s))
		}
	}
}
