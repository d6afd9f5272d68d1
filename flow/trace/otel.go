package trace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OtelSink implements Sink by creating an OpenTelemetry span per record.
//
// Each record becomes a span with:
//   - Span name: record.Label (e.g. "fetch:OK:0.012s")
//   - Attributes: runID, nodeID, and all record.Metadata fields
//   - Status: set to error if Metadata["error"] is present
//
// Spans are points in time, not durations: they are started and ended
// immediately within Emit. Use Flush before shutdown to force export of
// whatever the global TracerProvider has buffered.
//
// Usage:
//
//	tracer := otel.Tracer("agentflow")
//	sink := trace.NewOtelSink(tracer)
//	f := flow.NewFlow(flow.WithDefaultSink(sink))
type OtelSink struct {
	tracer trace.Tracer
}

// NewOtelSink returns an OtelSink that emits spans through tracer.
func NewOtelSink(tracer trace.Tracer) *OtelSink {
	return &OtelSink{tracer: tracer}
}

// Emit starts and immediately ends a span named after record.Label.
func (o *OtelSink) Emit(record Record) {
	ctx := context.Background()
	_, span := o.tracer.Start(ctx, record.Label)
	defer span.End()

	span.SetAttributes(
		attribute.String("agentflow.run_id", record.RunID),
		attribute.String("agentflow.node_id", record.NodeID),
	)
	o.addMetadataAttributes(span, record.Metadata)

	if errMsg, ok := record.Metadata["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}

func (o *OtelSink) addMetadataAttributes(span trace.Span, meta map[string]any) {
	for key, value := range meta {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
		}
	}
}

// Flush forces export of any buffered spans via the global TracerProvider,
// if it supports ForceFlush (the SDK provider does; the no-op provider
// does not, and Flush is then a no-op itself).
func (o *OtelSink) Flush(ctx context.Context) error {
	tp := otel.GetTracerProvider()

	type flusher interface {
		ForceFlush(context.Context) error
	}

	if f, ok := tp.(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}
