package graal

import "errors"

var (
	// ErrArtifactsMissing is returned when a classpath entry does not exist at invocation time
	ErrArtifactsMissing = errors.New("assembled artifacts missing")

	// ErrUnknownStage is returned when Options.Until names a stage the orchestrator does not build
	ErrUnknownStage = errors.New("unknown stage")
)
