package models

import "time"

// PostsPerPage is the fixed page size of the post listing.
const PostsPerPage = 5

// ImagePrefix is the logical directory post images are stored under.
const ImagePrefix = "posts"

// Post represents a blog post with an attached image.
type Post struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Image     string    `json:"image" gorm:"not null"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostPage is one page of the post listing.
type PostPage struct {
	Posts   []*Post
	Page    int
	PerPage int
	Total   int
}

// ImageUpload is an uploaded image file with its sniffed MIME type.
type ImageUpload struct {
	Filename string `form:"image" validate:"-"`
	Size     int64  `form:"image" validate:"max=2097152"`
	MIME     string `form:"image" validate:"oneof=image/jpeg image/png"`
	Data     []byte `form:"image" validate:"-"`
	ext      string
}

// CreatePostInput is the submitted form for a new post.
type CreatePostInput struct {
	Image   *ImageUpload `form:"image" validate:"required"`
	Title   string       `form:"title" validate:"required,min=5"`
	Content string       `form:"content" validate:"required,min=10"`
}

// UpdatePostInput is the submitted form for an existing post. Image is optional.
type UpdatePostInput struct {
	Image   *ImageUpload `form:"image" validate:"omitempty"`
	Title   string       `form:"title" validate:"required,min=5"`
	Content string       `form:"content" validate:"required,min=10"`
}
