package extract

import "errors"

var (
	// ErrExtractionFailed is returned for malformed archives, unsupported entries, or write failures
	ErrExtractionFailed = errors.New("extraction failed")
)
