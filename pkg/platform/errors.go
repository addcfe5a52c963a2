package platform

import "errors"

var (
	// ErrUnsupportedPlatform is returned when the host OS or architecture has no GraalVM CE release
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
