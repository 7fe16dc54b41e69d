package repositories

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
)

// OpenBadger opens the badger database at path. An empty path gives an
// in-memory database that disappears on Close.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}
	return db, nil
}

// Backup streams a full backup of db to w and returns the version it covers.
func Backup(db *badger.DB, w io.Writer) (uint64, error) {
	version, err := db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("backing up database: %w", err)
	}
	return version, nil
}

// Restore loads a backup produced by Backup into db.
func Restore(db *badger.DB, r io.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := db.Load(r, 4); err != nil {
		return fmt.Errorf("restoring database: %w", err)
	}
	return nil
}
