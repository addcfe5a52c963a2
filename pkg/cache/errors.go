package cache

import "errors"

var (
	// ErrCacheDirectoryUnavailable is returned when a cache directory cannot be created and does not already exist
	ErrCacheDirectoryUnavailable = errors.New("cache directory unavailable")

	// ErrLockUnsupported is returned on hosts without advisory file locking
	ErrLockUnsupported = errors.New("cache locking not supported on this platform")
)
