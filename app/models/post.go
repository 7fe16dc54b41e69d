package models

import (
	"time"
)

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}

// Touch marks the post as modified now while keeping its original creation time.
func (p *Post) Touch(createdAt time.Time) {
	p.CreatedAt = createdAt
	p.UpdatedAt = time.Now()
}

// ImagePath returns the logical file store path of the post's image.
func (p *Post) ImagePath() string {
	return ImagePath(p.Image)
}

// ImagePath joins a stored image name onto ImagePrefix.
func ImagePath(name string) string {
	return ImagePrefix + "/" + name
}

// Offset returns the number of posts preceding this page.
func (pp *PostPage) Offset() int {
	return (pp.Page - 1) * pp.PerPage
}

// LastPage returns the number of the final page, at least 1.
func (pp *PostPage) LastPage() int {
	if pp.Total == 0 || pp.PerPage < 1 {
		return 1
	}
	return (pp.Total + pp.PerPage - 1) / pp.PerPage
}

func (pp *PostPage) HasPrev() bool { return pp.Page > 1 }

func (pp *PostPage) HasNext() bool { return pp.Page < pp.LastPage() }

func (pp *PostPage) PrevPage() int { return pp.Page - 1 }

func (pp *PostPage) NextPage() int { return pp.Page + 1 }

// FirstItem returns the 1-based position of the first post on the page, or 0 when empty.
func (pp *PostPage) FirstItem() int {
	if len(pp.Posts) == 0 {
		return 0
	}
	return pp.Offset() + 1
}

// LastItem returns the 1-based position of the last post on the page, or 0 when empty.
func (pp *PostPage) LastItem() int {
	if len(pp.Posts) == 0 {
		return 0
	}
	return pp.Offset() + len(pp.Posts)
}
