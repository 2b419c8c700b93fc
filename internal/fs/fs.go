package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
)

// ErrNotDirectory is wrapped by DiscoveryError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// DiscoveryError means the walk root is unusable. It aborts the whole run.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ReadError means a single file could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError means a single file could not be replaced. The original content
// is still on disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Discover validates root and returns a single-use sequence of every file
// below it whose base name is exactly name. Paths are yielded in WalkDir
// order. Unreadable directories are yielded with a non-nil error and the
// walk continues.
//
// A symlinked root is resolved before walking and yielded paths stay joined
// onto root as given. Symlinks below the root are not followed.
func Discover(root, name string) (iter.Seq2[string, error], error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Err: ErrNotDirectory}
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	// display maps a path under resolved back onto root.
	display := func(path string) string {
		if resolved == root {
			return path
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return path
		}
		return filepath.Join(root, rel)
	}

	used := false
	seq := func(yield func(string, error) bool) {
		if used {
			return
		}
		used = true

		_ = filepath.WalkDir(resolved, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				path = display(path)
				if !yield(path, &ReadError{Path: path, Err: err}) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			// Symlinks are not followed; replacing one would detach it from its target.
			if !d.Type().IsRegular() || d.Name() != name {
				return nil
			}
			if !yield(display(path), nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
	return seq, nil
}

// ReadFile reads a whole file, wrapping failures in ReadError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

// Rel makes path relative to the working directory for display, falling
// back to path itself.
func Rel(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil {
		return path
	}
	return rel
}
