// Package storage keeps uploaded files for posts. Backends are swapped by
// configuration: local disk, memory (tests) or any S3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileStore stores and removes files addressed by a logical slash separated path.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Put stores size bytes from r as prefix/name, replacing any existing file.
	Put(ctx context.Context, prefix, name string, r io.Reader, size int64) error

	// Delete removes the file at p. Deleting a missing file is not an error.
	Delete(ctx context.Context, p string) error

	// Exists reports whether a file is stored at p.
	Exists(ctx context.Context, p string) (bool, error)

	// URL returns the browser facing address of the file at p.
	URL(p string) string
}

// Error records a failed file store operation.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Join builds the logical path for name under prefix.
func Join(prefix, name string) string {
	return path.Join(prefix, name)
}

// cleanPath rejects paths that would escape the store root.
func cleanPath(p string) (string, error) {
	cleaned := path.Clean("/" + p)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid path %q", p)
	}
	return cleaned, nil
}
