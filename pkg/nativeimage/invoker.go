package nativeimage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/observability"
	"github.com/platinummonkey/graalkit/pkg/platform"
)

// InvokerOptions configures an Invoker
type InvokerOptions struct {
	Platform platform.Key
	Runner   Runner
	Locator  *Locator
	Metrics  *observability.Metrics
	Logger   logrus.FieldLogger
	Stdout   io.Writer
	Stderr   io.Writer
}

// Invoker drives the toolkit's native-image compiler
type Invoker struct {
	runner  Runner
	locator *Locator
	metrics *observability.Metrics
	log     logrus.FieldLogger
	stdout  io.Writer
	stderr  io.Writer
}

// NewInvoker creates an invoker, defaulting to an ExecRunner and the process's stdio
func NewInvoker(opts InvokerOptions) *Invoker {
	if opts.Runner == nil {
		opts.Runner = NewExecRunner()
	}
	if opts.Locator == nil {
		opts.Locator = NewLocator(opts.Platform, 0)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Invoker{
		runner:  opts.Runner,
		locator: opts.Locator,
		metrics: opts.Metrics,
		log:     opts.Logger,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}
}

// Invoke compiles target with the compiler in toolkitDir and returns the
// compiler's exit code and the produced executable's path.
func (i *Invoker) Invoke(ctx context.Context, toolkitDir string, target BuildTarget) (int, string, error) {
	target, err := target.WithDefaults()
	if err != nil {
		return -1, "", err
	}
	if err := target.Validate(); err != nil {
		return -1, "", err
	}

	compiler, err := i.locator.Locate(toolkitDir)
	if err != nil {
		return -1, "", err
	}

	if err := os.MkdirAll(target.OutputDir, 0755); err != nil {
		return -1, "", fmt.Errorf("%w: create output directory %s: %v", ErrInvocationFailed, target.OutputDir, err)
	}

	args := Arguments(target)
	log := i.log.WithFields(logrus.Fields{
		"compiler":   compiler,
		"main_class": target.MainClass,
		"output":     target.Output(),
	})
	log.WithField("args", args).Info("Running native-image")

	result, err := i.runner.Execute(ctx, &ExecutionRequest{
		Path:   compiler,
		Args:   args,
		Dir:    target.ProjectDir,
		Stdout: i.stdout,
		Stderr: i.stderr,
	})
	i.metrics.ObserveCompilerInvocation(err)

	exitCode := -1
	if result != nil {
		exitCode = result.ExitCode
	}
	if err != nil {
		log.WithError(err).WithField("exit_code", exitCode).Error("native-image failed")
		return exitCode, "", err
	}

	log.WithField("duration", result.Duration).Info("native-image complete")
	return exitCode, target.Output(), nil
}
