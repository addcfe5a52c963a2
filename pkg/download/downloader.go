package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/graalkit/pkg/cache"
	"github.com/platinummonkey/graalkit/pkg/distribution"
	"github.com/platinummonkey/graalkit/pkg/observability"
)

// Downloader fetches release archives into the cache
type Downloader struct {
	cache   *cache.Cache
	fetcher Fetcher
	metrics *observability.Metrics
	log     logrus.FieldLogger
}

// NewDownloader creates a downloader. metrics may be nil.
func NewDownloader(c *cache.Cache, fetcher Fetcher, metrics *observability.Metrics, log logrus.FieldLogger) *Downloader {
	if log == nil {
		log = logrus.New()
	}
	return &Downloader{
		cache:   c,
		fetcher: fetcher,
		metrics: metrics,
		log:     log,
	}
}

// Output returns the cache path the archive for r is written to
func (d *Downloader) Output(r distribution.Release) string {
	return d.cache.Entry(r.Version).Path(r.ArchiveFileName())
}

// ShouldRun reports whether the archive is missing from the cache.
// It never touches the network.
func (d *Downloader) ShouldRun(r distribution.Release) bool {
	return !d.cache.Entry(r.Version).Exists(r.ArchiveFileName())
}

// Download fetches the archive for r and returns its cache path.
// An archive already in the cache is returned without a network call.
func (d *Downloader) Download(ctx context.Context, r distribution.Release) (string, error) {
	entry := d.cache.Entry(r.Version)
	if _, err := entry.VersionDir(); err != nil {
		return "", err
	}

	return entry.Materialize(ctx, r.ArchiveFileName(), func(ctx context.Context, dst string) error {
		return d.fetchTo(ctx, r.ArchiveURL(), dst)
	})
}

// fetchTo streams rawURL into a temp file next to dst and renames it over dst
func (d *Downloader) fetchTo(ctx context.Context, rawURL, dst string) error {
	log := d.log.WithField("url", rawURL)
	log.Info("Downloading GraalVM tooling")

	body, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrTransferFailed, err)
	}
	tmpPath := tmp.Name()

	n, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write archive: %v", ErrTransferFailed, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", ErrTransferFailed, closeErr)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename archive: %v", ErrTransferFailed, err)
	}

	d.metrics.AddDownloadBytes(n)
	log.WithFields(logrus.Fields{"path": dst, "bytes": n}).Info("Download complete")
	return nil
}
