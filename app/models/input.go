package models

import (
	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest accepted upload, 2048 kilobytes.
const MaxImageSize = 2048 * 1024

// NewImageUpload wraps uploaded bytes. The MIME type is detected from the
// content, never from the client supplied name.
func NewImageUpload(filename string, data []byte) *ImageUpload {
	mtype := mimetype.Detect(data)
	return &ImageUpload{
		Filename: filename,
		Size:     int64(len(data)),
		MIME:     mtype.String(),
		Data:     data,
		ext:      mtype.Extension(),
	}
}

// Extension returns the extension of the detected type, including the dot.
func (u *ImageUpload) Extension() string {
	return u.ext
}

// Validate checks the form against the create rules.
func (in *CreatePostInput) Validate() error {
	return validateInput(in)
}

// Validate checks the form against the update rules.
func (in *UpdatePostInput) Validate() error {
	return validateInput(in)
}

// HasImage reports whether a replacement image was submitted.
func (in *UpdatePostInput) HasImage() bool {
	return in.Image != nil
}
