package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory FileStore, useful for testing.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	files     map[string][]byte
	publicURL string
	mu        sync.RWMutex

	// PutErr and DeleteErr, when set, are returned by the matching operation.
	PutErr    error
	DeleteErr error
}

// NewMemoryStore creates an empty store whose URLs start with publicURL.
func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{
		files:     make(map[string][]byte),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (m *MemoryStore) Put(ctx context.Context, prefix, name string, r io.Reader, size int64) error {
	p := Join(prefix, name)
	if m.PutErr != nil {
		return &Error{Op: "put", Path: p, Err: m.PutErr}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &Error{Op: "put", Path: p, Err: err}
	}
	if int64(len(data)) != size {
		return &Error{Op: "put", Path: p, Err: fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = data
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, p string) error {
	if m.DeleteErr != nil {
		return &Error{Op: "delete", Path: p, Err: m.DeleteErr}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, p)
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[p]
	return ok, nil
}

func (m *MemoryStore) URL(p string) string {
	return m.publicURL + "/" + strings.TrimLeft(p, "/")
}

// Get returns a copy of the stored bytes.
func (m *MemoryStore) Get(p string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[p]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Paths lists every stored path in sorted order.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
