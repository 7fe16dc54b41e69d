package repositories

import (
	"context"

	"postboard/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	// Create assigns the post an ID and persists it.
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	// List returns up to limit posts, newest first, after skipping offset,
	// together with the total number of posts.
	List(ctx context.Context, limit, offset int) ([]*models.Post, int, error)
	// Update replaces the stored fields of an existing post. CreatedAt is
	// preserved and UpdatedAt is refreshed.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int) error
}
