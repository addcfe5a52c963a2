package cli

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/cache"
	"github.com/platinummonkey/graalkit/pkg/config"
	"github.com/platinummonkey/graalkit/pkg/download"
	"github.com/platinummonkey/graalkit/pkg/graal"
	"github.com/platinummonkey/graalkit/pkg/nativeimage"
	"github.com/platinummonkey/graalkit/pkg/observability"
	"github.com/platinummonkey/graalkit/pkg/platform"
)

// session holds the per-invocation logger, metrics and telemetry
type session struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	otel     *observability.OTelProviders
	stdout   io.Writer
	stderr   io.Writer
}

func newSession(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*session, error) {
	var log *logrus.Logger
	if cfg.Observability.LogFormat == "json" {
		log = observability.NewLogger(cfg.LogLevel(), stderr)
	} else {
		log = observability.NewTextLogger(cfg.LogLevel(), stderr)
	}

	// Nothing is fetched or written for a host we cannot serve
	host, err := platform.Host()
	if err != nil {
		return nil, err
	}

	otelCfg := cfg.OTel()
	otelCfg.Platform = host.String()
	providers, err := observability.InitOTel(ctx, otelCfg, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	if providers != nil {
		otelMetrics, err := observability.NewOTelMetrics()
		if err != nil {
			return nil, err
		}
		metrics.AttachOTel(otelMetrics)
	}

	return &session{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  metrics,
		otel:     providers,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// orchestrator builds the stage graph up to and including until
func (s *session) orchestrator(ctx context.Context, until string) (*graal.Orchestrator, error) {
	root := s.cfg.Toolkit.CacheDir
	if root == "" {
		var err error
		if root, err = cache.DefaultRoot(); err != nil {
			return nil, err
		}
	}

	fetcher, err := download.NewFetcher(ctx, s.cfg.Toolkit.DownloadBaseURL, s.cfg.DownloadS3(), nil)
	if err != nil {
		return nil, err
	}

	opts := graal.Options{
		BaseURL:      s.cfg.Toolkit.DownloadBaseURL,
		Version:      s.cfg.Toolkit.Version,
		Cache:        cache.New(root, s.log),
		Fetcher:      fetcher,
		ForceExtract: s.cfg.Toolkit.ForceExtract,
		Until:        until,
		Metrics:      s.metrics,
		Logger:       s.log,
		Stdout:       s.stdout,
		Stderr:       s.stderr,
	}

	if until == graal.StageNativeImage {
		opts.Target = nativeimage.BuildTarget{
			MainClass:  s.cfg.Build.MainClass,
			OutputName: s.cfg.Build.OutputName,
			OutputDir:  s.cfg.Build.OutputDir,
			Classpath:  s.cfg.Build.Classpath,
			ProjectDir: s.cfg.Build.ProjectDir,
		}
		if s.cfg.Build.AssembleCommand != "" {
			opts.Assembler = &graal.CommandAssembler{
				Command: s.cfg.Build.AssembleCommand,
				Dir:     s.cfg.Build.ProjectDir,
				Stdout:  s.stdout,
				Stderr:  s.stderr,
				Logger:  s.log,
			}
		}
	}

	return graal.New(opts)
}

// close pushes metrics and flushes telemetry
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := observability.PushMetrics(ctx, s.cfg.Observability.MetricsPushURL, "graalkit", s.registry); err != nil {
		s.log.WithError(err).Warn("Failed to push metrics")
	}
	if err := observability.ShutdownOTel(ctx, s.otel, s.log); err != nil {
		s.log.WithError(err).Warn("Failed to shut down OpenTelemetry")
	}
}
