package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic replaces path with data using a temp file in the same
// directory and a rename, so readers see either the old or the new content.
// The original file mode is preserved.
func WriteAtomic(path string, data []byte) (err error) {
	// Holding the original open for writing fails early on read-only files,
	// which a bare rename would silently replace.
	orig, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer orig.Close()

	info, err := orig.Stat()
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".routepin-*")
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to write temp file: %w", err)}
	}
	if err = tmp.Sync(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to sync temp file: %w", err)}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to close temp file: %w", err)}
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to set file mode: %w", err)}
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("failed to replace file: %w", err)}
	}
	return nil
}
