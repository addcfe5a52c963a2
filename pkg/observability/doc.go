// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Components log through logrus:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.WithField("stage", "downloadGraalTooling").Info("Stage complete")
//
// The CLI uses NewTextLogger for terminal output.
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ObserveStage("extractGraalTooling", observability.StatusSkipped, 0)
//
// Build runs are short-lived, so metrics are pushed to a Pushgateway at the
// end of a run instead of being scraped:
//
//	observability.PushMetrics(ctx, "http://pushgateway:9091", "graalkit", registry)
//
// # OpenTelemetry
//
// InitOTel installs global OTLP/gRPC tracer and meter providers. Pipeline
// stages create spans through Tracer().
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// NewOTelMetrics creates OTLP instruments matching the Prometheus metrics;
// attach them with Metrics.AttachOTel to export both.
package observability
