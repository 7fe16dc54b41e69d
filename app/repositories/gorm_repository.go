package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"postboard/app/config"
	"postboard/app/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to the SQL database named by cfg. Only the sqlite and
// postgres types are SQL backed.
func OpenGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("database type %s is not SQL backed", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Type, err)
	}
	return db, nil
}

// GormPostRepository implements PostRepository on a SQL database.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository migrates the posts table and returns the repository.
func NewGormPostRepository(db *gorm.DB) (*GormPostRepository, error) {
	if err := db.AutoMigrate(&models.Post{}); err != nil {
		return nil, fmt.Errorf("migrating posts table: %w", err)
	}
	return &GormPostRepository{db: db}, nil
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = 0
	post.BeforeCreate()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, int, error) {
	var total int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := db.Order("created_at desc").Order("id desc").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, int(total), nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		err := tx.Select("id", "created_at").First(&existing, post.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		post.Touch(existing.CreatedAt)
		return tx.Save(post).Error
	})
}

func (r *GormPostRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
