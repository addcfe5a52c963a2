package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Untar unpacks a gzip-compressed tarball into root, preserving file modes.
// Directories, regular files, symlinks and hard links are supported. Entries
// that would land outside root, directly or through links created by earlier
// entries, are rejected.
func Untar(ctx context.Context, archivePath, root string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("%w: resolve root %s: %v", ErrExtractionFailed, root, err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open archive: %v", ErrExtractionFailed, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: %s is not a gzip archive: %v", ErrExtractionFailed, archivePath, err)
	}
	defer gz.Close()

	type dirMode struct {
		path string
		mode os.FileMode
	}
	var dirs []dirMode

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: read archive: %v", ErrExtractionFailed, err)
		}

		target, err := safeJoin(root, hdr.Name)
		if err != nil {
			return err
		}
		mode := hdr.FileInfo().Mode().Perm()

		if hdr.Typeflag != tar.TypeXGlobalHeader {
			if err := checkParent(realRoot, target, hdr.Name); err != nil {
				return err
			}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if isSymlink(target) {
				return fmt.Errorf("%w: directory %s replaces a symlink", ErrExtractionFailed, hdr.Name)
			}
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			dirs = append(dirs, dirMode{path: target, mode: mode})

		case tar.TypeReg:
			if err := writeFile(target, tr, mode); err != nil {
				return err
			}

		case tar.TypeSymlink:
			if err := checkSymlink(realRoot, target, hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}

		case tar.TypeLink:
			source, err := safeJoin(root, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := checkParent(realRoot, source, hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}
			if err := os.Link(source, target); err != nil {
				return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
			}

		case tar.TypeXGlobalHeader:
			continue

		default:
			return fmt.Errorf("%w: unsupported entry type %q for %s", ErrExtractionFailed, hdr.Typeflag, hdr.Name)
		}
	}

	// Directory modes are applied last so read-only directories can still be populated
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].mode); err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}
	return nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	// A symlink left by an earlier entry must be replaced, not written through
	if isSymlink(target) {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("%w: write %s: %v", ErrExtractionFailed, target, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %v", ErrExtractionFailed, target, closeErr)
	}

	// OpenFile is subject to umask; execute bits must survive
	if err := os.Chmod(target, mode); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return nil
}

// safeJoin resolves an archive entry name under root
func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: absolute path %s in archive", ErrExtractionFailed, name)
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %s escapes archive root", ErrExtractionFailed, name)
	}
	return filepath.Join(root, cleaned), nil
}

// checkSymlink rejects links whose target resolves outside realRoot
func checkSymlink(realRoot, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: symlink %s points to absolute path %s", ErrExtractionFailed, target, linkname)
	}
	parent, err := realPath(filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrExtractionFailed, target, err)
	}
	resolved, err := realPath(filepath.Join(parent, linkname))
	if err != nil || !within(realRoot, resolved) {
		return fmt.Errorf("%w: symlink %s escapes archive root", ErrExtractionFailed, target)
	}
	return nil
}

// checkParent rejects entries whose parent directory resolves outside realRoot
// through symlinks already on disk
func checkParent(realRoot, target, name string) error {
	parent, err := realPath(filepath.Dir(target))
	if err != nil || !within(realRoot, parent) {
		return fmt.Errorf("%w: path %s escapes archive root through a symlink", ErrExtractionFailed, name)
	}
	return nil
}

// realPath evaluates symlinks in the longest existing prefix of path and
// appends the components that do not exist yet
func realPath(path string) (string, error) {
	existing := path
	var rest []string
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}
