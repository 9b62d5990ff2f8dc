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

// UserProfile is the editable part of a user.
type UserProfile struct {
	FirstName string             `json:"firstName"`
	LastName  *string            `json:"lastName,omitempty"`
	Settings  model.UserSettings `json:"settings"`
}

// UpdateProfileInput replaces the profile wholesale. An empty lastName clears it.
type UpdateProfileInput struct {
	FirstName string             `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string             `json:"lastName" validate:"max=50"`
	Settings  model.UserSettings `json:"settings"`
}

// UserService exposes domain operations.
type UserService interface {
	// GetUserByID returns nil, nil when the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.RequestUser, error)
	GetUserProfile(ctx context.Context, id uuid.UUID) (*UserProfile, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserProfile, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.RequestUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user.ToRequestUser(), nil
}

func (s *userService) GetUserProfile(ctx context.Context, id uuid.UUID) (*UserProfile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return toProfile(user), nil
}

func (s *userService) UpdateUserProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserProfile, error) {
	var updated *model.User
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.UserRepository) error {
		user, err := repo.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		if err != nil {
			return err
		}

		user.FirstName = strings.TrimSpace(input.FirstName)
		user.LastName = nil
		if last := strings.TrimSpace(input.LastName); last != "" {
			user.LastName = &last
		}
		settings := input.Settings
		user.Settings = &settings

		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		var httpErr *apperrors.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, apperrors.Internal(err)
	}
	return toProfile(updated), nil
}

func toProfile(u *model.User) *UserProfile {
	p := &UserProfile{FirstName: u.FirstName, LastName: u.LastName}
	if u.Settings != nil {
		p.Settings = *u.Settings
	}
	return p
}
