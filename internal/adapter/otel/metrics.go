package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lettora"

// Metrics holds the agreement engine's metric instruments.
type Metrics struct {
	DocumentsGenerated metric.Int64Counter
	RenderWarnings     metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.DocumentsGenerated, err = meter.Int64Counter("lettora.documents.generated",
		metric.WithDescription("Number of agreement documents assembled"))
	if err != nil {
		return nil, err
	}

	m.RenderWarnings, err = meter.Int64Counter("lettora.render.warnings",
		metric.WithDescription("Number of content-authoring warnings emitted during rendering"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
