package download

import "errors"

var (
	// ErrTransferFailed is returned when the archive cannot be fetched or written to the cache
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnsupportedScheme is returned for download base URLs with no matching fetcher
	ErrUnsupportedScheme = errors.New("unsupported download URL scheme")
)
