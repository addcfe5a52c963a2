package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// watchClasspath calls rebuild after changes to any classpath entry settle for debounce.
// Jar entries are watched through their parent directory since builds replace them.
// It returns nil once ctx is cancelled.
func watchClasspath(ctx context.Context, classpath []string, debounce time.Duration, log logrus.FieldLogger, rebuild func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	var files, dirs []string
	for _, entry := range classpath {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return err
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			dirs = append(dirs, abs)
			if err := addTree(watcher, abs); err != nil {
				return fmt.Errorf("failed to watch %s: %w", abs, err)
			}
			continue
		}
		files = append(files, abs)
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}

	relevant := func(name string) bool {
		for _, f := range files {
			if name == f {
				return true
			}
		}
		for _, d := range dirs {
			if name == d || strings.HasPrefix(name, d+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Name) {
				continue
			}
			log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("Classpath changed")

			// Also watch new directories
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						log.WithError(err).Warn("Error watching new directory")
					}
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			log.Info("Classpath changed, rebuilding")
			if err := rebuild(ctx); err != nil {
				log.WithError(err).Error("Rebuild failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watcher error")
		}
	}
}

// addTree recursively adds all directories under root to the watcher
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
