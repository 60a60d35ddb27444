// Package safe reads and writes operator-supplied files with basic guards.
package safe

import (
	"fmt"
	"os"
	"path/filepath"

	cerrors "github.com/coral-mesh/pprofd/internal/errors"
)

// DefaultMaxFileSize bounds ReadFile when no limit is given (16MB).
const DefaultMaxFileSize = 16 << 20

// ReadOptions configures ReadFile.
type ReadOptions struct {
	// MaxSize is the maximum allowed file size in bytes. Zero means DefaultMaxFileSize.
	MaxSize int64
	// AllowSymlinks allows reading through a symlink. Default is false.
	AllowSymlinks bool
}

// ReadFile reads a regular file no larger than the configured limit.
// Symlinks are rejected unless allowed.
func ReadFile(path string, opts *ReadOptions) ([]byte, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Lstat(cleanPath)
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !opts.AllowSymlinks {
			return nil, fmt.Errorf("file %q is a symlink, which is not allowed", path)
		}
		if info, err = os.Stat(cleanPath); err != nil {
			return nil, err
		}
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path %q is not a regular file", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum allowed size of %d bytes", path, maxSize)
	}

	return os.ReadFile(cleanPath)
}

// WriteFile writes data to a temporary file next to path and renames it into
// place, so readers never observe a partially written profile.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o600
	}
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := fillTemp(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	committed = true
	return nil
}

// fillTemp writes data and closes f. A failed close is reported since it
// can mean the data never reached the disk.
func fillTemp(f *os.File, data []byte, perm os.FileMode) (err error) {
	defer cerrors.CloseInto(&err, f)

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Chmod(perm)
}
