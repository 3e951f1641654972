package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// BuildMetrics adapts the observability manager to the document builder's
// recorder interface. Safe to use with a nil manager; everything becomes a no-op.
type BuildMetrics struct {
	om *ObservabilityManager
}

// NewBuildMetrics creates a recorder backed by the given manager
func NewBuildMetrics(om *ObservabilityManager) *BuildMetrics {
	return &BuildMetrics{om: om}
}

// RecordFallback counts a local fallback taken during formalization
func (b *BuildMetrics) RecordFallback(category, reason string) {
	if b == nil || b.om == nil {
		return
	}
	b.om.GetMetrics().RecordFallback(context.Background(), category, reason, b.om)
}

// RecordDocumentBuilt counts a finished document build by type and mode
func (b *BuildMetrics) RecordDocumentBuilt(docType, mode string) {
	if b == nil || b.om == nil {
		return
	}
	metricType := "resume_built"
	if docType == "cover" {
		metricType = "cover_built"
	}
	b.om.GetMetrics().RecordBusinessMetric(context.Background(), metricType, true, b.om,
		attribute.String("mode", mode))
}
