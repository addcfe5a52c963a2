package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics mirrors the Prometheus metrics as OpenTelemetry instruments
// so they reach the OTLP collector configured by InitOTel
type OTelMetrics struct {
	// Pipeline metrics
	stageRuns     metric.Int64Counter
	stageDuration metric.Float64Histogram

	// Download metrics
	downloadBytes metric.Int64Counter

	// Compiler metrics
	compilerInvocations metric.Int64Counter
}

// NewOTelMetrics creates the instruments from the global meter provider
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter(TracerName)

	m := &OTelMetrics{}
	var err error

	m.stageRuns, err = meter.Int64Counter(
		"graalkit.stage.runs",
		metric.WithDescription("Pipeline stage executions by outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage runs counter: %w", err)
	}

	m.stageDuration, err = meter.Float64Histogram(
		"graalkit.stage.duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	m.downloadBytes, err = meter.Int64Counter(
		"graalkit.download.bytes",
		metric.WithDescription("Toolkit archive bytes downloaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create download bytes counter: %w", err)
	}

	m.compilerInvocations, err = meter.Int64Counter(
		"graalkit.compiler.invocations",
		metric.WithDescription("native-image invocations by outcome"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create compiler invocations counter: %w", err)
	}

	return m, nil
}

// RecordStage records a stage outcome
func (m *OTelMetrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	m.stageRuns.Add(ctx, 1, attrs)
	if status != StatusSkipped {
		m.stageDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordDownloadBytes records archive bytes written to the cache
func (m *OTelMetrics) RecordDownloadBytes(ctx context.Context, n int64) {
	m.downloadBytes.Add(ctx, n)
}

// RecordCompilerInvocation records a compiler run outcome
func (m *OTelMetrics) RecordCompilerInvocation(ctx context.Context, status string) {
	m.compilerInvocations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
