// Package tracing wraps the OpenTelemetry API for service operations. With no
// SDK installed the global provider is a no-op.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "malpot/pkg/domain-errors"
)

// Start opens a span named op on the named tracer.
func Start(ctx context.Context, tracer, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracer).Start(ctx, op, trace.WithAttributes(attrs...))
}

// End records err on span and ends it. Caller mistakes (not found,
// conflict, validation) become span events; everything else marks the span
// as failed.
func End(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	if IsBusinessError(err) {
		span.AddEvent("business_error", trace.WithAttributes(
			attribute.String("error.code", string(dErrors.CodeOf(err))),
			attribute.String("error", err.Error()),
		))
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}

// IsBusinessError reports whether err is an expected domain outcome rather
// than a system failure.
func IsBusinessError(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return false
	default:
		return true
	}
}
