package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStage is returned when a stage is missing its name or body
	ErrInvalidStage = errors.New("invalid stage")

	// ErrDuplicateStage is returned when two stages share a name
	ErrDuplicateStage = errors.New("duplicate stage")

	// ErrUnknownDependency is returned when a stage depends on a stage that is not in the pipeline
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrCycle is returned when stage dependencies form a cycle
	ErrCycle = errors.New("dependency cycle")

	// ErrInputMismatch is returned when a dependency's declared output is not among the dependent's inputs
	ErrInputMismatch = errors.New("stage input does not match dependency output")
)

// StageError reports which stage failed a run
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
