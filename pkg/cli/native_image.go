package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/platinummonkey/graalkit/pkg/config"
	"github.com/platinummonkey/graalkit/pkg/graal"
)

func newNativeImageCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "native-image",
		Description: "Build a native executable, acquiring the toolkit first if needed",
		Flags:       flag.NewFlagSet("native-image", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(stderr)
	tf := addToolkitFlags(cmd.Flags)
	bf := addBuildFlags(cmd.Flags)
	watch := cmd.Flags.Bool("watch", false, "Rebuild whenever a classpath entry changes")
	debounce := cmd.Flags.Duration("debounce", 500*time.Millisecond, "Quiet period before a watched change triggers a rebuild")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd.Flags, tf, bf)
		if err != nil {
			return err
		}
		if err := cfg.ValidateBuild(); err != nil {
			return err
		}
		if *watch {
			return runWatch(ctx, cfg, *debounce, stdout, stderr)
		}
		return runUntil(ctx, cfg, graal.StageNativeImage, stdout, stderr)
	}
	return cmd
}

// runWatch builds once, then rebuilds on classpath changes until ctx is cancelled
func runWatch(ctx context.Context, cfg *config.Config, debounce time.Duration, stdout, stderr io.Writer) error {
	s, err := newSession(ctx, cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	o, err := s.orchestrator(ctx, graal.StageNativeImage)
	if err != nil {
		return err
	}
	stage, _ := o.Pipeline().Stage(graal.StageNativeImage)

	build := func(ctx context.Context) error {
		if _, err := o.Run(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, stage.Output)
		return nil
	}

	if err := build(ctx); err != nil {
		s.log.WithError(err).Error("Initial build failed, waiting for changes")
	}

	s.log.WithField("classpath", cfg.Build.Classpath).Info("Watching classpath for changes")
	return watchClasspath(ctx, cfg.Build.Classpath, debounce, s.log, build)
}
