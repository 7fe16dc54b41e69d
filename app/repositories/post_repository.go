package repositories

import (
	"context"
	"fmt"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB.
// Posts are keyed by zero padded ID, so reverse key order is newest first.
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.BeforeCreate()

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post

	err := r.db.View(func(txn *badger.Txn) error {
		return getPost(txn, id, &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func getPost(txn *badger.Txn, id int, post *models.Post) error {
	item, err := txn.Get(postKey(id))
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, post)
	})
}

// List retrieves a page of posts, newest first, and the total post count.
func (r *BadgerPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, int, error) {
	var posts []*models.Post
	total := 0

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if total >= offset && len(posts) < limit {
				var post models.Post
				err := it.Item().Value(func(val []byte) error {
					return unmarshalEntity(val, &post)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal post: %w", err)
				}
				posts = append(posts, &post)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing models.Post
		if err := getPost(txn, post.ID, &existing); err != nil {
			return err
		}
		post.Touch(existing.CreatedAt)

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(ctx context.Context, id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)

		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
