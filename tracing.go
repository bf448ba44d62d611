package cqltask

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/arloliu/cqltask"
	spanName            = "cqltask.Execute"
)

func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return tp.Tracer(instrumentationName)
}

// startSpan opens the client span for one execution. The query text itself
// is not recorded, only its leading keyword.
func (e *Executor) startSpan(ctx context.Context, in Input, hosts []string, id string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "cassandra"),
		attribute.String("db.operation.name", operationName(in.Query)),
		attribute.String("db.cassandra.consistency_level", e.config.Consistency.String()),
		attribute.String("server.address", hosts[0]),
		attribute.Int("server.port", in.EffectivePort()),
		attribute.String("cqltask.execution_id", id),
	}
	if in.Keyspace != "" {
		attrs = append(attrs, attribute.String("db.namespace", in.Keyspace))
	}

	return e.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, result *Result) {
	span.SetAttributes(
		attribute.Int("cqltask.rows", len(result.QueryResults)),
		attribute.Int("cqltask.warnings", len(result.Warnings)),
	)
	for _, w := range result.Warnings {
		span.AddEvent("server warning", trace.WithAttributes(attribute.String("message", w)))
	}
	span.SetStatus(codes.Ok, "")
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// operationName returns the upper-cased first keyword of stmt, e.g. "SELECT".
func operationName(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}

	op := strings.TrimRight(fields[0], ";(")

	return strings.ToUpper(op)
}
