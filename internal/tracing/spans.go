package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrCommandName  = "command.name"
	AttrCommandMode  = "command.mode"
	AttrCommandCount = "command.count"
	AttrCommandText  = "command.text"
	AttrJobID        = "job.id"
	AttrExitCode     = "process.exit_code"
	AttrErrorType    = "error.type"
)

// Span names.
const (
	SpanCommandRun = "command.run"
	SpanExternal   = "command.external"
)

// StartCommand starts a span for running text in the given mode.
func StartCommand(ctx context.Context, tracer trace.Tracer, text, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanCommandRun, trace.WithAttributes(
		attribute.String(AttrCommandText, text),
		attribute.String(AttrCommandMode, mode),
	))
}

// End finishes span, recording err when non-nil.
func End(span trace.Span, err error, errType string) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errType != "" {
			span.SetAttributes(attribute.String(AttrErrorType, errType))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
