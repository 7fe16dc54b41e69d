package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore is a FileStore backed by a directory on disk:
//
//	<root>/
//	  posts/
//	    <name>     (uploaded images)
type LocalStore struct {
	root      string
	publicURL string
}

// NewLocalStore creates the root directory if needed. publicURL is the path
// the directory is served under, e.g. "/storage".
func NewLocalStore(root, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Root returns the directory files are stored in.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) fullPath(p string) (string, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Put writes the file with a temp file and rename so readers never see a partial image.
func (s *LocalStore) Put(ctx context.Context, prefix, name string, r io.Reader, size int64) error {
	p := Join(prefix, name)
	destPath, err := s.fullPath(p)
	if err != nil {
		return &Error{Op: "put", Path: p, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: "put", Path: p, Err: err}
	}
	if err := s.writeFile(destPath, r, size); err != nil {
		return &Error{Op: "put", Path: p, Err: err}
	}
	return nil
}

// Delete removes the file, ignoring files that are already gone.
func (s *LocalStore) Delete(ctx context.Context, p string) error {
	fullPath, err := s.fullPath(p)
	if err != nil {
		return &Error{Op: "delete", Path: p, Err: err}
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "delete", Path: p, Err: err}
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, p string) (bool, error) {
	fullPath, err := s.fullPath(p)
	if err != nil {
		return false, &Error{Op: "stat", Path: p, Err: err}
	}
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: "stat", Path: p, Err: err}
	}
	return !info.IsDir(), nil
}

func (s *LocalStore) URL(p string) string {
	return s.publicURL + "/" + strings.TrimLeft(p, "/")
}

func (s *LocalStore) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
