package nativeimage

import "errors"

var (
	// ErrInvocationFailed is returned when the compiler cannot be started or exits non-zero
	ErrInvocationFailed = errors.New("native-image invocation failed")

	// ErrCompilerNotFound is returned when the toolkit has no executable compiler at the platform path
	ErrCompilerNotFound = errors.New("native-image executable not found")

	// ErrInvalidTarget is returned when a build target is missing required fields
	ErrInvalidTarget = errors.New("invalid build target")
)
