package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/cli"
	"github.com/platinummonkey/graalkit/pkg/observability"
)

func main() {
	ctx, cancel := observability.SignalContext(context.Background(), logrus.StandardLogger())
	defer cancel()

	// Create root command
	rootCmd := cli.NewRootCommand()

	// Execute command
	if err := rootCmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
