package nativeimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// ExecutionRequest describes one child process
type ExecutionRequest struct {
	Path   string
	Args   []string
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// ExecutionResult holds the outcome of a child process
type ExecutionResult struct {
	ExitCode int
	Duration time.Duration
}

// Runner executes child processes
type Runner interface {
	Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResult, error)
}

// ExecRunner runs processes on the host with os/exec
type ExecRunner struct{}

// NewExecRunner creates a host process runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Execute runs req to completion, streaming its output to the request writers.
// A non-zero exit is reported as ErrInvocationFailed with the exit code in the result.
func (r *ExecRunner) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResult, error) {
	result := &ExecutionResult{ExitCode: -1}

	startTime := time.Now()
	defer func() {
		result.Duration = time.Since(startTime)
	}()

	cmd := exec.CommandContext(ctx, req.Path, req.Args...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%w: %s interrupted: %w", ErrInvocationFailed, req.Path, ctxErr)
		}
		return result, fmt.Errorf("%w: %s exited with code %d", ErrInvocationFailed, req.Path, result.ExitCode)
	}
	return result, fmt.Errorf("%w: start %s: %v", ErrInvocationFailed, req.Path, err)
}
