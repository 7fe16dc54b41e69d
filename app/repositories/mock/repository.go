// Package mock provides an in-memory PostRepository for tests.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"
)

// PostRepository keeps copies of posts in a map. The *Err fields, when set,
// are returned by the matching operation before it touches any state.
type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex

	CreateErr error
	GetErr    error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

// Len returns the number of stored posts.
func (m *PostRepository) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts)
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	post.BeforeCreate()
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (m *PostRepository) Update(ctx context.Context, post *models.Post) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	post.Touch(existing.CreatedAt)
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *PostRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, int, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	all := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		cp := *post
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

// Seed stores a post with a fixed creation time, bypassing the clock.
func (m *PostRepository) Seed(title, content, image string, createdAt time.Time) *models.Post {
	post := &models.Post{Title: title, Content: content, Image: image, CreatedAt: createdAt, UpdatedAt: createdAt}
	_ = m.Create(context.Background(), post)
	return post
}
