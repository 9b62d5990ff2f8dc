package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blogapi/internal/model"
)

// SortColumn is a post timestamp column usable as a keyset.
type SortColumn string

const (
	SortByCreatedAt SortColumn = "created_at"
	SortByUpdatedAt SortColumn = "updated_at"
)

// Keyset is the position of the last row of the previous page.
type Keyset struct {
	Time time.Time
	ID   uuid.UUID
}

// PostFilter describes one page of the post listing. Every set field is ANDed.
type PostFilter struct {
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
	Search     string
	Tags       []string
	SortBy     SortColumn
	Desc       bool
	After      *Keyset
	Limit      int
}

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByID loads a post with its category and author.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	List(ctx context.Context, f PostFilter) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// Delete removes a post. gorm.ErrRecordNotFound is returned when nothing matched.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("User").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter) ([]model.Post, error) {
	col := f.SortBy
	switch col {
	case SortByCreatedAt, SortByUpdatedAt:
	case "":
		col = SortByCreatedAt
	default:
		return nil, fmt.Errorf("unsupported sort column %q", col)
	}

	dir, cmp := "ASC", ">"
	if f.Desc {
		dir, cmp = "DESC", "<"
	}

	q := r.db.WithContext(ctx).Model(&model.Post{})

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := containsPattern(strings.ToLower(s))
		q = q.Where(r.db.Where("LOWER(title) LIKE ? ESCAPE '!'", pattern).Or("LOWER(content) LIKE ? ESCAPE '!'", pattern))
	}
	for _, tag := range f.Tags {
		q = q.Where("tags LIKE ? ESCAPE '!'", jsonElementPattern(tag))
	}

	// The OR must stay one parenthesized unit next to the filters above.
	if f.After != nil {
		q = q.Where(
			r.db.Where(fmt.Sprintf("%s %s ?", col, cmp), f.After.Time).
				Or(fmt.Sprintf("%s = ? AND id %s ?", col, cmp), f.After.Time, f.After.ID),
		)
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var posts []model.Post
	err := q.
		Preload("Category").
		Preload("User").
		Order(fmt.Sprintf("%s %s", col, dir)).
		Order(fmt.Sprintf("id %s", dir)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
