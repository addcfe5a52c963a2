package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// Version is the graalkit release, set at build time
var Version = "dev"

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command writing to the process's stdio
func NewRootCommand() *Command {
	return newRootCommand(os.Stdout, os.Stderr)
}

func newRootCommand(stdout, stderr io.Writer) *Command {
	root := &Command{
		Name:        "graalkit",
		Description: "graalkit - GraalVM native-image toolchain manager",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("graalkit", flag.ContinueOnError),
	}
	root.Flags.SetOutput(stderr)

	// Add subcommands
	root.Subcommands["download"] = newDownloadCommand(stdout, stderr)
	root.Subcommands["extract"] = newExtractCommand(stdout, stderr)
	root.Subcommands["native-image"] = newNativeImageCommand(stdout, stderr)
	root.Subcommands["plan"] = newPlanCommand(stdout, stderr)
	root.Subcommands["version"] = newVersionCommand(stdout)

	return root
}

// Execute runs the command named by os.Args
func (c *Command) Execute(ctx context.Context) error {
	return c.ExecuteArgs(ctx, os.Args[1:])
}

// ExecuteArgs runs the subcommand named by args[0]
func (c *Command) ExecuteArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(ctx, args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	out := c.Flags.Output()
	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
