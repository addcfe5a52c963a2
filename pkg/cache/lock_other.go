//go:build !unix

package cache

import "context"

func lockFile(ctx context.Context, path string) (func() error, error) {
	return nil, ErrLockUnsupported
}
