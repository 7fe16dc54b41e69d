package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/storage"
)

// PostService handles business logic for blog posts and their images
type PostService struct {
	postRepo repositories.PostRepository
	files    storage.FileStore
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, files storage.FileStore, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo: postRepo,
		files:    files,
		logger:   logger,
	}
}

// ListPosts returns one page of posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, page int) (*models.PostPage, error) {
	if page < 1 {
		page = 1
	}
	result := &models.PostPage{Page: page, PerPage: models.PostsPerPage}

	posts, total, err := s.postRepo.List(ctx, result.PerPage, result.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	result.Posts = posts
	result.Total = total
	return result, nil
}

// GetPost retrieves a post by ID. It returns repositories.ErrNotFound for unknown IDs.
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return post, nil
}

// CreatePost validates the form, stores the image and inserts the post.
func (s *PostService) CreatePost(ctx context.Context, in models.CreatePostInput) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	name, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Image:   name,
		Title:   in.Title,
		Content: in.Content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	s.logger.InfoContext(ctx, "post created", "id", post.ID, "image", post.ImagePath())
	return post, nil
}

// UpdatePost validates the form and updates an existing post. A supplied
// image is written before the previous one is removed.
func (s *PostService) UpdatePost(ctx context.Context, id int, in models.UpdatePostInput) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.HasImage() {
		name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		s.deleteImage(ctx, post.ImagePath())
		post.Image = name
	}
	post.Title = in.Title
	post.Content = in.Content

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "post updated", "id", post.ID, "image_replaced", in.HasImage())
	return post, nil
}

// DeletePost removes the post's image and then the post itself.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}

	s.deleteImage(ctx, post.ImagePath())

	if err := s.postRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting post %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "post deleted", "id", id)
	return nil
}

// ImageURL returns the public URL of a stored image name.
func (s *PostService) ImageURL(name string) string {
	return s.files.URL(models.ImagePath(name))
}

func (s *PostService) storeImage(ctx context.Context, img *models.ImageUpload) (string, error) {
	name := storage.HashName(img.Data, img.Extension())
	if err := s.files.Put(ctx, models.ImagePrefix, name, bytes.NewReader(img.Data), img.Size); err != nil {
		return "", err
	}
	return name, nil
}

// deleteImage is best effort: a file that cannot be removed is logged and
// left behind rather than failing the request.
func (s *PostService) deleteImage(ctx context.Context, p string) {
	if err := s.files.Delete(ctx, p); err != nil {
		s.logger.WarnContext(ctx, "image delete failed", "path", p, "error", err)
	}
}
