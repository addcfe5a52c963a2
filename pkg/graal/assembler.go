package graal

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/nativeimage"
)

// Assembler produces the classpath artifacts the compiler consumes.
// It is owned by the outer build.
type Assembler interface {
	Assemble(ctx context.Context) error
}

// AssemblerFunc adapts a function to Assembler
type AssemblerFunc func(ctx context.Context) error

// Assemble calls f
func (f AssemblerFunc) Assemble(ctx context.Context) error {
	return f(ctx)
}

// CommandAssembler runs a shell command such as "./gradlew jar"
type CommandAssembler struct {
	Command string
	Dir     string
	Runner  nativeimage.Runner
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  logrus.FieldLogger
}

// Assemble runs the command and fails on a non-zero exit
func (a *CommandAssembler) Assemble(ctx context.Context) error {
	runner := a.Runner
	if runner == nil {
		runner = nativeimage.NewExecRunner()
	}
	if a.Logger != nil {
		a.Logger.WithField("command", a.Command).Info("Assembling build artifacts")
	}

	shell, flag := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	_, err := runner.Execute(ctx, &nativeimage.ExecutionRequest{
		Path:   shell,
		Args:   []string{flag, a.Command},
		Dir:    a.Dir,
		Stdout: a.Stdout,
		Stderr: a.Stderr,
	})
	if err != nil {
		return fmt.Errorf("assemble command %q: %w", a.Command, err)
	}
	return nil
}
