// Package graal wires toolkit download, extraction and native-image
// compilation into a single pipeline.
package graal

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/graalkit/pkg/cache"
	"github.com/platinummonkey/graalkit/pkg/distribution"
	"github.com/platinummonkey/graalkit/pkg/download"
	"github.com/platinummonkey/graalkit/pkg/extract"
	"github.com/platinummonkey/graalkit/pkg/nativeimage"
	"github.com/platinummonkey/graalkit/pkg/observability"
	"github.com/platinummonkey/graalkit/pkg/pipeline"
	"github.com/platinummonkey/graalkit/pkg/platform"
)

// Stage names
const (
	StageDownload    = "downloadGraalTooling"
	StageExtract     = "extractGraalTooling"
	StageNativeImage = "nativeImage"
	StageAssemble    = "assemble"
)

// Options configures an Orchestrator
type Options struct {
	// BaseURL and Version select the release; empty values use the distribution defaults
	BaseURL string
	Version string

	// GOOS and GOARCH override the host platform
	GOOS   string
	GOARCH string

	Cache   *cache.Cache
	Fetcher download.Fetcher
	Runner  nativeimage.Runner

	// Target is only required when the native image stage is built
	Target nativeimage.BuildTarget
	// Assembler, when set, becomes an upstream dependency of the native image stage
	Assembler Assembler

	ForceExtract bool
	// Until names the last stage to build; empty builds the whole chain
	Until string

	Metrics *observability.Metrics
	Logger  logrus.FieldLogger
	Tracer  trace.Tracer
	Stdout  io.Writer
	Stderr  io.Writer
}

// Orchestrator owns the stage wiring and nothing else
type Orchestrator struct {
	release  distribution.Release
	pipeline *pipeline.Pipeline
}

// New resolves the platform and builds the stage graph. An unsupported host
// fails here, before any cache or network access.
func New(opts Options) (*Orchestrator, error) {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.GOARCH == "" {
		opts.GOARCH = runtime.GOARCH
	}
	key, err := platform.Resolve(opts.GOOS, opts.GOARCH)
	if err != nil {
		return nil, err
	}

	if opts.BaseURL == "" {
		opts.BaseURL = distribution.DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = distribution.DefaultVersion
	}
	release := distribution.Release{BaseURL: opts.BaseURL, Version: opts.Version, Platform: key}
	if err := release.Validate(); err != nil {
		return nil, err
	}

	if opts.Until == "" {
		opts.Until = StageNativeImage
	}
	if opts.Until != StageDownload && opts.Until != StageExtract && opts.Until != StageNativeImage {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, opts.Until)
	}

	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Cache == nil {
		root, err := cache.DefaultRoot()
		if err != nil {
			return nil, err
		}
		opts.Cache = cache.New(root, nil)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = download.NewHTTPFetcher(nil)
	}

	log := opts.Logger.WithFields(logrus.Fields{"version": release.Version, "platform": key.String()})
	stages, err := buildStages(opts, release, log)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(pipeline.Options{Logger: log, Metrics: opts.Metrics, Tracer: opts.Tracer}, stages...)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{release: release, pipeline: p}, nil
}

func buildStages(opts Options, release distribution.Release, log logrus.FieldLogger) ([]pipeline.Stage, error) {
	downloader := download.NewDownloader(opts.Cache, opts.Fetcher, opts.Metrics, log)
	archivePath := downloader.Output(release)

	stages := []pipeline.Stage{{
		Name:   StageDownload,
		Output: archivePath,
		ShouldRun: func(context.Context) (bool, error) {
			return downloader.ShouldRun(release), nil
		},
		Run: func(ctx context.Context) error {
			_, err := downloader.Download(ctx, release)
			return err
		},
	}}
	if opts.Until == StageDownload {
		return stages, nil
	}

	extractor := extract.NewExtractor(opts.Cache, opts.ForceExtract, log)
	toolkitDir := extractor.Output(release)

	stages = append(stages, pipeline.Stage{
		Name:      StageExtract,
		DependsOn: []string{StageDownload},
		Inputs:    []string{archivePath},
		Output:    toolkitDir,
		ShouldRun: func(context.Context) (bool, error) {
			return extractor.ShouldRun(release), nil
		},
		Run: func(ctx context.Context) error {
			_, err := extractor.Extract(ctx, archivePath, release)
			return err
		},
	})
	if opts.Until == StageExtract {
		return stages, nil
	}

	target, err := opts.Target.WithDefaults()
	if err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	deps := []string{StageExtract}
	if opts.Assembler != nil {
		assembler := opts.Assembler
		stages = append(stages, pipeline.Stage{
			Name: StageAssemble,
			Run:  assembler.Assemble,
		})
		deps = append(deps, StageAssemble)
	}

	invoker := nativeimage.NewInvoker(nativeimage.InvokerOptions{
		Platform: release.Platform,
		Runner:   opts.Runner,
		Metrics:  opts.Metrics,
		Logger:   log,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
	})

	stages = append(stages, pipeline.Stage{
		Name:      StageNativeImage,
		DependsOn: deps,
		Inputs:    append([]string{toolkitDir}, target.Classpath...),
		Output:    target.Output(),
		Run: func(ctx context.Context) error {
			if err := checkArtifacts(target.Classpath); err != nil {
				return err
			}
			_, _, err := invoker.Invoke(ctx, toolkitDir, target)
			return err
		},
	})
	return stages, nil
}

// checkArtifacts verifies the assembled classpath exists
func checkArtifacts(classpath []string) error {
	for _, entry := range classpath {
		if _, err := os.Stat(entry); err != nil {
			return fmt.Errorf("%w: classpath entry %s: %v", ErrArtifactsMissing, entry, err)
		}
	}
	return nil
}

// Release returns the resolved release
func (o *Orchestrator) Release() distribution.Release {
	return o.release
}

// Pipeline returns the stage graph
func (o *Orchestrator) Pipeline() *pipeline.Pipeline {
	return o.pipeline
}

// Run executes the stage graph
func (o *Orchestrator) Run(ctx context.Context) (*pipeline.Report, error) {
	return o.pipeline.Run(ctx)
}

// Plan reports which stages would run
func (o *Orchestrator) Plan(ctx context.Context) ([]pipeline.Decision, error) {
	return o.pipeline.Plan(ctx)
}
