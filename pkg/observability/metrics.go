package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Stage outcome labels
const (
	StatusRan     = "ran"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Pipeline metrics
	StageRunsTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec

	// Download metrics
	DownloadBytesTotal prometheus.Counter

	// Compiler metrics
	CompilerInvocationsTotal *prometheus.CounterVec

	otel *OTelMetrics
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		StageRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graalkit_stage_runs_total",
				Help: "Total number of pipeline stage executions by outcome",
			},
			[]string{"stage", "status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graalkit_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		DownloadBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "graalkit_download_bytes_total",
				Help: "Total number of toolkit archive bytes downloaded",
			},
		),
		CompilerInvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graalkit_compiler_invocations_total",
				Help: "Total number of native-image invocations by outcome",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.StageRunsTotal,
		m.StageDuration,
		m.DownloadBytesTotal,
		m.CompilerInvocationsTotal,
	)

	return m
}

// AttachOTel also records every observation to o
func (m *Metrics) AttachOTel(o *OTelMetrics) {
	if m == nil {
		return
	}
	m.otel = o
}

// ObserveStage records one stage outcome
func (m *Metrics) ObserveStage(stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StageRunsTotal.WithLabelValues(stage, status).Inc()
	if status != StatusSkipped {
		m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	}
	if m.otel != nil {
		m.otel.RecordStage(context.Background(), stage, status, duration)
	}
}

// AddDownloadBytes records archive bytes written to the cache
func (m *Metrics) AddDownloadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DownloadBytesTotal.Add(float64(n))
	if m.otel != nil {
		m.otel.RecordDownloadBytes(context.Background(), n)
	}
}

// ObserveCompilerInvocation records a compiler run
func (m *Metrics) ObserveCompilerInvocation(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.CompilerInvocationsTotal.WithLabelValues(status).Inc()
	if m.otel != nil {
		m.otel.RecordCompilerInvocation(context.Background(), status)
	}
}

// PushMetrics sends everything gathered by g to a Prometheus Pushgateway.
// Build runs are short-lived, so metrics are pushed instead of scraped.
func PushMetrics(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
