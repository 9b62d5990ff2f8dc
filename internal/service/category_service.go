package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// UpdateCategoryInput is a partial update; nil fields are left unchanged.
type UpdateCategoryInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// CategoryService exposes category CRUD.
type CategoryService interface {
	CreateCategory(ctx context.Context, user *model.RequestUser, input CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context, name string) ([]model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, user *model.RequestUser, input CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.FieldError("name", "Name is required")
	}
	category := &model.Category{Name: name}
	if user != nil {
		category.UserID = &user.ID
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, apperrors.Internal(err)
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Category not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, name string) ([]model.Category, error) {
	categories, err := s.repo.List(ctx, name)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*model.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.FieldError("name", "Name is required")
		}
		category.Name = name
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, apperrors.Internal(err)
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountPosts(ctx, id)
	if err != nil {
		return apperrors.Internal(err)
	}
	if n > 0 {
		return apperrors.Conflict("Category still has posts")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}
