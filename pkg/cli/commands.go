package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/platinummonkey/graalkit/pkg/config"
	"github.com/platinummonkey/graalkit/pkg/graal"
)

func newDownloadCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "download",
		Description: "Download the GraalVM archive for this host into the cache",
		Flags:       flag.NewFlagSet("download", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(stderr)
	tf := addToolkitFlags(cmd.Flags)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd.Flags, tf, nil)
		if err != nil {
			return err
		}
		return runUntil(ctx, cfg, graal.StageDownload, stdout, stderr)
	}
	return cmd
}

func newExtractCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "extract",
		Description: "Download and unpack the GraalVM toolkit for this host",
		Flags:       flag.NewFlagSet("extract", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(stderr)
	tf := addToolkitFlags(cmd.Flags)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd.Flags, tf, nil)
		if err != nil {
			return err
		}
		return runUntil(ctx, cfg, graal.StageExtract, stdout, stderr)
	}
	return cmd
}

// runUntil runs the chain up to until and prints that stage's output path
func runUntil(ctx context.Context, cfg *config.Config, until string, stdout, stderr io.Writer) error {
	s, err := newSession(ctx, cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	o, err := s.orchestrator(ctx, until)
	if err != nil {
		return err
	}
	if _, err := o.Run(ctx); err != nil {
		return err
	}

	stage, _ := o.Pipeline().Stage(until)
	fmt.Fprintln(stdout, stage.Output)
	return nil
}

func newPlanCommand(stdout, stderr io.Writer) *Command {
	cmd := &Command{
		Name:        "plan",
		Description: "Show which stages would run without running them",
		Flags:       flag.NewFlagSet("plan", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(stderr)
	tf := addToolkitFlags(cmd.Flags)
	bf := addBuildFlags(cmd.Flags)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		cfg, err := loadConfig(cmd.Flags, tf, bf)
		if err != nil {
			return err
		}

		s, err := newSession(ctx, cfg, stdout, stderr)
		if err != nil {
			return err
		}
		defer s.close()

		// Without a build target only the toolkit stages can be planned
		until := graal.StageNativeImage
		if cfg.ValidateBuild() != nil {
			until = graal.StageExtract
		}

		o, err := s.orchestrator(ctx, until)
		if err != nil {
			return err
		}
		decisions, err := o.Plan(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tACTION\tOUTPUT")
		for _, d := range decisions {
			action := "skip"
			if d.Run {
				action = "run"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Stage, action, d.Output)
		}
		return w.Flush()
	}
	return cmd
}

func newVersionCommand(stdout io.Writer) *Command {
	return &Command{
		Name:        "version",
		Description: "Print the graalkit version",
		Flags:       flag.NewFlagSet("version", flag.ContinueOnError),
		Run: func(ctx context.Context, args []string) error {
			fmt.Fprintf(stdout, "graalkit %s\n", Version)
			return nil
		},
	}
}
