package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/db/dbtest"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

func TestSeed_Idempotent(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.New(t))
	ctx := context.Background()

	created, skipped, err := seed(ctx, repo, seedUsers, defaultPassword)
	require.NoError(t, err)
	assert.Equal(t, len(seedUsers), created)
	assert.Zero(t, skipped)

	created, skipped, err = seed(ctx, repo, seedUsers, defaultPassword)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(seedUsers), skipped)

	admin, err := repo.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.SystemRole)
	assert.Equal(t, model.StatusActive, admin.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(defaultPassword)))
}

func TestSeed_RejectsWeakPassword(t *testing.T) {
	repo := repository.NewUserRepository(dbtest.New(t))

	for _, pw := range []string{"", "password", "Password1", "P@ss word1"} {
		created, _, err := seed(context.Background(), repo, seedUsers, pw)
		assert.Error(t, err, pw)
		assert.Zero(t, created)
	}

	_, err := repo.FindByEmail(context.Background(), "admin@example.com")
	assert.Error(t, err)
}
