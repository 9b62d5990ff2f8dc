package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogapi/internal/db/dbtest"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

func TestUserService_GetUserByID(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewUserService(repository.NewUserRepository(gdb))
	ctx := context.Background()

	u := &model.User{FirstName: "Ada", Email: "ada@example.com", Password: "secret-hash", SystemRole: model.RoleUser, Status: model.StatusActive}
	require.NoError(t, gdb.Create(u).Error)

	got, err := svc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	missing, err := svc.GetUserByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserService_UpdateUserProfile(t *testing.T) {
	gdb := dbtest.New(t)
	svc := NewUserService(repository.NewUserRepository(gdb))
	ctx := context.Background()

	last := "Lovelace"
	u := &model.User{FirstName: "Ada", LastName: &last, Email: "ada@example.com", Password: "x", SystemRole: model.RoleUser, Status: model.StatusActive}
	require.NoError(t, gdb.Create(u).Error)

	profile, err := svc.UpdateUserProfile(ctx, u.ID, UpdateProfileInput{
		FirstName: "Augusta",
		LastName:  "",
		Settings:  model.UserSettings{Timezone: "Europe/London"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", profile.FirstName)
	assert.Nil(t, profile.LastName)
	assert.Equal(t, "Europe/London", profile.Settings.Timezone)

	stored, err := svc.GetUserProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, profile, stored)

	_, err = svc.UpdateUserProfile(ctx, uuid.New(), UpdateProfileInput{FirstName: "Nobody"})
	assertHTTPError(t, err, http.StatusNotFound, "User not found")

	_, err = svc.GetUserProfile(ctx, uuid.New())
	assertHTTPError(t, err, http.StatusNotFound, "User not found")
}

func TestUserService_UpdateUserProfile_RollsBack(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := NewUserService(mockRepo)
	_, err := svc.UpdateUserProfile(context.Background(), uuid.New(), UpdateProfileInput{FirstName: "Ada"})
	assertHTTPError(t, err, http.StatusInternalServerError, "")
	mockRepo.AssertExpectations(t)
}
