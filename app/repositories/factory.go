package repositories

import (
	"fmt"

	"postboard/app/config"
)

// Store is an opened record store and the means to release it.
type Store struct {
	Posts PostRepository
	close func() error
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open creates the PostRepository implementation named by cfg.Type.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Type {
	case "badger", "memory":
		path := cfg.Path
		if cfg.Type == "memory" {
			path = ""
		}
		db, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return &Store{Posts: NewBadgerPostRepository(db), close: db.Close}, nil
	case "sqlite", "postgres":
		db, err := OpenGorm(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		repo, err := NewGormPostRepository(db)
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		return &Store{Posts: repo, close: sqlDB.Close}, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
