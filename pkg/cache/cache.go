package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache is a filesystem store of downloaded and unpacked toolkits keyed by version.
//
// Layout:
//
//	<root>/<version>/
//	├── graalvm-ce-<version>-<arch>.tar.gz
//	└── graalvm-ce-<version>/
//
// Entries are never evicted. The presence of a file or directory is the only
// completion signal, so writers stage into a temporary name and rename into place.
type Cache struct {
	root  string
	group singleflight.Group
	log   *logrus.Logger
}

// DefaultRoot returns ~/.graalkit
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".graalkit"), nil
}

// New creates a cache rooted at root
func New(root string, log *logrus.Logger) *Cache {
	if log == nil {
		log = logrus.New()
	}
	return &Cache{
		root: root,
		log:  log,
	}
}

// Root returns the cache root directory
func (c *Cache) Root() string {
	return c.root
}

// Entry returns the cache entry for a toolkit version
func (c *Cache) Entry(version string) *Entry {
	return &Entry{cache: c, version: version}
}

// Entry is the version-scoped part of the cache
type Entry struct {
	cache   *Cache
	version string
}

// Version returns the toolkit version this entry is keyed by
func (e *Entry) Version() string {
	return e.version
}

// Dir returns the entry directory without creating it
func (e *Entry) Dir() string {
	return filepath.Join(e.cache.root, e.version)
}

// VersionDir returns the entry directory, creating it on demand
func (e *Entry) VersionDir() (string, error) {
	dir := e.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return dir, nil
		}
		return "", fmt.Errorf("%w: unable to make cache directory, and it does not already exist: %s: %v",
			ErrCacheDirectoryUnavailable, dir, err)
	}
	return dir, nil
}

// Path resolves rel inside the entry directory
func (e *Entry) Path(rel string) string {
	return filepath.Join(e.Dir(), rel)
}

// Exists reports whether rel is present in the entry
func (e *Entry) Exists(rel string) bool {
	_, err := os.Stat(e.Path(rel))
	return err == nil
}

// Lock takes the advisory lock guarding rel. The returned func releases it.
func (e *Entry) Lock(ctx context.Context, rel string) (func() error, error) {
	dir, err := e.VersionDir()
	if err != nil {
		return nil, err
	}
	return lockFile(ctx, filepath.Join(dir, "."+rel+".lock"))
}

// MaterializeFunc produces the entry file or directory at dst
type MaterializeFunc func(ctx context.Context, dst string) error

// Materialize runs fn to produce rel unless it already exists.
//
// Callers in the same process share one execution; callers in other processes
// wait on the entry's file lock and then observe the finished result.
func (e *Entry) Materialize(ctx context.Context, rel string, fn MaterializeFunc) (string, error) {
	dst := e.Path(rel)
	_, err, _ := e.cache.group.Do(dst, func() (interface{}, error) {
		unlock, err := e.Lock(ctx, rel)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := unlock(); err != nil {
				e.cache.log.WithError(err).WithField("path", dst).Warn("Failed to release cache lock")
			}
		}()

		if e.Exists(rel) {
			e.cache.log.WithField("path", dst).Debug("Cache entry materialized by another process")
			return nil, nil
		}
		return nil, fn(ctx, dst)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}
