package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lettora"

// StartAssembleSpan starts a span for one document assembly.
func StartAssembleSpan(ctx context.Context, agreementType, landlordID string, preview bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "assemble",
		trace.WithAttributes(
			attribute.String("agreement.type", agreementType),
			attribute.String("landlord.id", landlordID),
			attribute.Bool("agreement.preview", preview),
		),
	)
}

// StartRenderSpan starts a span for rendering one section.
func StartRenderSpan(ctx context.Context, sectionKey string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "render.section",
		trace.WithAttributes(attribute.String("section.key", sectionKey)),
	)
}
