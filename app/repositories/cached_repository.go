package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"postboard/app/cache"
	"postboard/app/models"
)

// CachedPostRepository keeps single posts in a cache in front of another
// PostRepository. Listing and creation go straight through; updates and
// deletes invalidate the cached entry.
type CachedPostRepository struct {
	PostRepository
	cache  cache.Cache
	logger *slog.Logger
}

// WithCache wraps repo with c. A nil cache returns repo unchanged.
func WithCache(repo PostRepository, c cache.Cache, logger *slog.Logger) PostRepository {
	if c == nil {
		return repo
	}
	return &CachedPostRepository{PostRepository: repo, cache: c, logger: logger}
}

func cacheKey(id int) string {
	return PostKeyPrefix + strconv.Itoa(id)
}

func (r *CachedPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	key := cacheKey(id)
	if val, err := r.cache.Get(ctx, key); err == nil {
		var post models.Post
		if err := json.Unmarshal(val, &post); err == nil {
			return &post, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		r.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	post, err := r.PostRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(post); err == nil {
		if err := r.cache.Set(ctx, key, data); err != nil {
			r.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return post, nil
}

func (r *CachedPostRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.PostRepository.Update(ctx, post); err != nil {
		return err
	}
	r.invalidate(ctx, post.ID)
	return nil
}

func (r *CachedPostRepository) Delete(ctx context.Context, id int) error {
	if err := r.PostRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedPostRepository) invalidate(ctx context.Context, id int) {
	key := cacheKey(id)
	if err := r.cache.Del(ctx, key); err != nil {
		r.logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}
