package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/cache"
	"github.com/platinummonkey/graalkit/pkg/distribution"
)

// Extractor unpacks cached release archives into the version's cache entry
type Extractor struct {
	cache *cache.Cache
	force bool
	log   logrus.FieldLogger
}

// NewExtractor creates an extractor. With force set, existing toolkit
// directories are replaced instead of skipped.
func NewExtractor(c *cache.Cache, force bool, log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logrus.New()
	}
	return &Extractor{
		cache: c,
		force: force,
		log:   log,
	}
}

// Output returns the directory the toolkit for r is unpacked to
func (e *Extractor) Output(r distribution.Release) string {
	return e.cache.Entry(r.Version).Path(r.ToolkitDirName())
}

// ShouldRun reports whether the toolkit directory is missing or a forced re-extract was requested
func (e *Extractor) ShouldRun(r distribution.Release) bool {
	return e.force || !e.cache.Entry(r.Version).Exists(r.ToolkitDirName())
}

// Extract unpacks archivePath and returns the toolkit directory.
//
// The archive is unpacked into a temporary directory beside the destination
// and its top-level directory renamed into place, so a present toolkit
// directory is always complete.
func (e *Extractor) Extract(ctx context.Context, archivePath string, r distribution.Release) (string, error) {
	entry := e.cache.Entry(r.Version)
	if _, err := entry.VersionDir(); err != nil {
		return "", err
	}
	name := r.ToolkitDirName()

	if !e.force {
		return entry.Materialize(ctx, name, func(ctx context.Context, dst string) error {
			return e.unpack(ctx, archivePath, dst, name)
		})
	}

	unlock, err := entry.Lock(ctx, name)
	if err != nil {
		return "", err
	}
	defer unlock()

	dst := entry.Path(name)
	if err := e.unpack(ctx, archivePath, dst, name); err != nil {
		return "", err
	}
	return dst, nil
}

// unpack extracts archivePath into a temp dir and moves its top-level directory to dst
func (e *Extractor) unpack(ctx context.Context, archivePath, dst, topLevel string) error {
	log := e.log.WithFields(logrus.Fields{"archive": archivePath, "target": dst})
	log.Info("Extracting GraalVM tooling")

	tmpDir, err := os.MkdirTemp(filepath.Dir(dst), ".extract-*")
	if err != nil {
		return fmt.Errorf("%w: create temp dir: %v", ErrExtractionFailed, err)
	}
	defer os.RemoveAll(tmpDir)

	if err := Untar(ctx, archivePath, tmpDir); err != nil {
		return err
	}

	src := filepath.Join(tmpDir, topLevel)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: archive %s has no top-level %s directory; delete it and retry", ErrExtractionFailed, archivePath, topLevel)
	}

	// A forced re-extract moves the old tree into the temp dir, which is removed on return
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Rename(dst, filepath.Join(tmpDir, ".previous")); err != nil {
			return fmt.Errorf("%w: move existing toolkit aside: %v", ErrExtractionFailed, err)
		}
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: rename extracted dir: %v", ErrExtractionFailed, err)
	}

	log.Info("Extraction complete")
	return nil
}
