package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/events"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type CreatePostInput struct {
	Title      string   `json:"title" validate:"required,max=255"`
	Content    string   `json:"content" validate:"required"`
	Tags       []string `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	CategoryID string   `json:"categoryId" validate:"required,uuid"`
}

// UpdatePostInput is a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title      *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Content    *string  `json:"content" validate:"omitempty,min=1"`
	Tags       []string `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	CategoryID *string  `json:"categoryId" validate:"omitempty,uuid"`
}

// ListPostsQuery carries the raw query string of GET /posts.
type ListPostsQuery struct {
	Q          string `json:"q" query:"q"`
	CategoryID string `json:"categoryId" query:"categoryId" validate:"omitempty,uuid"`
	UserID     string `json:"userId" query:"userId" validate:"omitempty,uuid"`
	Tags       string `json:"tags" query:"tags"`
	SortBy     string `json:"sortBy" query:"sortBy" validate:"omitempty,oneof=createdAt updatedAt"`
	SortOrder  string `json:"sortOrder" query:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Cursor     string `json:"cursor" query:"cursor"`
	Limit      int    `json:"limit" query:"limit"`
}

type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  *string   `json:"lastName,omitempty"`
}

// PostDetail is a post as returned to clients.
type PostDetail struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Tags       []string        `json:"tags"`
	CategoryID uuid.UUID       `json:"categoryId"`
	UserID     uuid.UUID       `json:"userId"`
	Category   CategorySummary `json:"category"`
	User       AuthorSummary   `json:"user"`
	CanEdit    bool            `json:"canEdit"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type PageMeta struct {
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
	Limit      int    `json:"limit"`
}

type PostPage struct {
	Posts []PostDetail `json:"posts"`
	Meta  PageMeta     `json:"meta"`
}

// PostService exposes post CRUD and the cursor-paginated listing.
// viewer may be nil on read operations.
type PostService interface {
	CreatePost(ctx context.Context, user *model.RequestUser, input CreatePostInput) (*PostDetail, error)
	GetPost(ctx context.Context, viewer *model.RequestUser, id uuid.UUID) (*PostDetail, error)
	ListPosts(ctx context.Context, viewer *model.RequestUser, query ListPostsQuery) (*PostPage, error)
	UpdatePost(ctx context.Context, user *model.RequestUser, id uuid.UUID, input UpdatePostInput) (*PostDetail, error)
	DeletePost(ctx context.Context, user *model.RequestUser, id uuid.UUID) error
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	publisher  events.Publisher
	log        *zap.Logger
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, publisher events.Publisher, log *zap.Logger) PostService {
	return &postService{
		posts:      posts,
		categories: categories,
		publisher:  publisher,
		log:        log.Named("post"),
	}
}

func (s *postService) CreatePost(ctx context.Context, user *model.RequestUser, input CreatePostInput) (*PostDetail, error) {
	if user == nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	categoryID, err := s.requireCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Tags:       tags,
		CategoryID: categoryID,
		UserID:     user.ID,
	}
	if post.Title == "" {
		return nil, apperrors.FieldError("title", "Title is required")
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.Internal(err)
	}

	created, err := s.load(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.PostCreated, created)
	return toPostDetail(created, user), nil
}

func (s *postService) GetPost(ctx context.Context, viewer *model.RequestUser, id uuid.UUID) (*PostDetail, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPostDetail(post, viewer), nil
}

func (s *postService) ListPosts(ctx context.Context, viewer *model.RequestUser, query ListPostsQuery) (*PostPage, error) {
	limit := query.Limit
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	filter := repository.PostFilter{
		Search: query.Q,
		SortBy: repository.SortByCreatedAt,
		Desc:   query.SortOrder != "asc",
		Limit:  limit + 1,
	}
	switch query.SortBy {
	case "", "createdAt":
	case "updatedAt":
		filter.SortBy = repository.SortByUpdatedAt
	default:
		return nil, apperrors.FieldError("sortBy", "Must be one of: createdAt, updatedAt")
	}
	switch query.SortOrder {
	case "", "asc", "desc":
	default:
		return nil, apperrors.FieldError("sortOrder", "Must be one of: asc, desc")
	}

	if query.CategoryID != "" {
		id, err := uuid.Parse(query.CategoryID)
		if err != nil {
			return nil, apperrors.FieldError("categoryId", "Invalid categoryId")
		}
		filter.CategoryID = &id
	}
	if query.UserID != "" {
		id, err := uuid.Parse(query.UserID)
		if err != nil {
			return nil, apperrors.FieldError("userId", "Invalid userId")
		}
		filter.UserID = &id
	}
	for _, tag := range strings.Split(query.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			filter.Tags = append(filter.Tags, tag)
		}
	}
	if query.Cursor != "" {
		t, id, err := DecodeCursor(query.Cursor)
		if err != nil {
			return nil, apperrors.FieldError("cursor", "Invalid cursor")
		}
		filter.After = &repository.Keyset{Time: t, ID: id}
	}

	rows, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	page := &PostPage{Posts: make([]PostDetail, 0, limit), Meta: PageMeta{Limit: limit}}
	if len(rows) > limit {
		page.Meta.HasMore = true
		rows = rows[:limit]
	}
	for i := range rows {
		page.Posts = append(page.Posts, *toPostDetail(&rows[i], viewer))
	}
	if page.Meta.HasMore {
		last := rows[len(rows)-1]
		key := last.CreatedAt
		if filter.SortBy == repository.SortByUpdatedAt {
			key = last.UpdatedAt
		}
		page.Meta.NextCursor = EncodeCursor(key, last.ID)
	}
	return page, nil
}

func (s *postService) UpdatePost(ctx context.Context, user *model.RequestUser, id uuid.UUID, input UpdatePostInput) (*PostDetail, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canEdit(user, post) {
		return nil, apperrors.Forbidden("You are not allowed to modify this post")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.FieldError("title", "Title is required")
		}
		post.Title = title
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Tags != nil {
		tags, err := normalizeTags(input.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}
	if input.CategoryID != nil {
		categoryID, err := s.requireCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		post.CategoryID = categoryID
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, apperrors.Internal(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.PostUpdated, updated)
	return toPostDetail(updated, user), nil
}

func (s *postService) DeletePost(ctx context.Context, user *model.RequestUser, id uuid.UUID) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canEdit(user, post) {
		return apperrors.Forbidden("You are not allowed to modify this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Post not found")
		}
		return apperrors.Internal(err)
	}
	s.publish(ctx, events.PostDeleted, post)
	return nil
}

func (s *postService) load(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Post not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return post, nil
}

func (s *postService) requireCategory(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.FieldError("categoryId", "Invalid category id")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperrors.FieldError("categoryId", "Category not found")
		}
		return uuid.Nil, apperrors.Internal(err)
	}
	return id, nil
}

// publish is fire-and-forget; a broker outage must not fail the request.
func (s *postService) publish(ctx context.Context, key string, post *model.Post) {
	ev := events.PostEvent{
		PostID:     post.ID,
		UserID:     post.UserID,
		CategoryID: post.CategoryID,
		Title:      post.Title,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, key, ev); err != nil {
		s.log.Warn("publish event", zap.String("key", key), zap.String("post_id", post.ID.String()), zap.Error(err))
	}
}

func canEdit(user *model.RequestUser, post *model.Post) bool {
	if user == nil {
		return false
	}
	return user.ID == post.UserID || user.SystemRole.AtLeast(model.RoleModerator)
}

func normalizeTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, apperrors.FieldError("tags", "Tag is required")
		}
		out = append(out, t)
	}
	return out, nil
}

func toPostDetail(p *model.Post, viewer *model.RequestUser) *PostDetail {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &PostDetail{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Tags:       tags,
		CategoryID: p.CategoryID,
		UserID:     p.UserID,
		Category:   CategorySummary{ID: p.Category.ID, Name: p.Category.Name},
		User: AuthorSummary{
			ID:        p.User.ID,
			Email:     p.User.Email,
			FirstName: p.User.FirstName,
			LastName:  p.User.LastName,
		},
		CanEdit:   canEdit(viewer, p),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
