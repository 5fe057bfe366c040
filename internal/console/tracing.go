// Tracing instrumentation for the evaluator.
package console

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vinayprograms/scriptconsole/internal/script"
)

// startEvaluateSpan starts a span for one evaluation.
func (e *Engine) startEvaluateSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	ctx, span := e.tracer.Start(ctx, "console.evaluate")
	span.SetAttributes(
		attribute.String("console.origin", e.origin),
		attribute.Int("console.source.bytes", len(source)),
	)
	return ctx, span
}

// endEvaluateSpan records the completion and ends the span.
func (e *Engine) endEvaluateSpan(span trace.Span, c script.Completion, index int) {
	span.SetAttributes(
		attribute.Bool("console.abrupt", c.Abrupt),
		attribute.Bool("console.has_value", c.HasValue),
		attribute.Int("console.message.index", index),
	)
	if c.Abrupt {
		err, ok := c.Value.(error)
		if !ok {
			err = fmt.Errorf("uncaught: %v", c.Value)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "uncaught exception")
	}
	span.End()
}
