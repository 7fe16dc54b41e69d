package storage

import (
	"context"
	"fmt"

	"postboard/app/config"
)

// NewFileStoreFromConfig creates a FileStore implementation based on the storage config type.
func NewFileStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.PublicURL), nil
	case "local":
		if cfg.Root == "" {
			return nil, fmt.Errorf("local storage requires root to be set")
		}
		return NewLocalStore(cfg.Root, cfg.PublicURL)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
