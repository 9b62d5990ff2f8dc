package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/logger"
	"blogapi/internal/model"
	"blogapi/internal/repository"
	"blogapi/internal/service"
	"blogapi/internal/validation"
)

const defaultPassword = "Asdf@123#"

type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	Role      model.Role
}

var seedUsers = []seedUser{
	{FirstName: "Admin", LastName: "User", Email: "admin@example.com", Role: model.RoleAdmin},
	{FirstName: "Regular", LastName: "User", Email: "user@example.com", Role: model.RoleUser},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.App.Name+"-seed", cfg.App.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, db.Options{Debug: cfg.App.Debug, Logger: log})
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	created, skipped, err := seed(context.Background(), repository.NewUserRepository(gormDB), seedUsers, defaultPassword)
	if err != nil {
		log.Fatal("seed users", zap.Error(err))
	}
	log.Info("seed completed", zap.Int("created", created), zap.Int("skipped", skipped))
}

// seed creates each user unless its email is already taken. Every user gets password.
func seed(ctx context.Context, repo repository.UserRepository, users []seedUser, password string) (created, skipped int, err error) {
	if err := validation.New().Var(password, "required,password"); err != nil {
		return 0, 0, fmt.Errorf("seed password too weak: %w", err)
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return 0, 0, fmt.Errorf("hash password: %w", err)
	}

	for _, su := range users {
		existing, err := repo.FindByEmail(ctx, su.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, skipped, fmt.Errorf("check user %s: %w", su.Email, err)
		}
		if existing != nil {
			skipped++
			continue
		}

		lastName := su.LastName
		user := &model.User{
			FirstName:  su.FirstName,
			LastName:   &lastName,
			Email:      su.Email,
			Password:   hash,
			SystemRole: su.Role,
			Status:     model.StatusActive,
			Settings:   &model.UserSettings{Timezone: "UTC"},
		}
		if err := repo.Create(ctx, user); err != nil {
			return created, skipped, fmt.Errorf("create user %s: %w", su.Email, err)
		}
		created++
	}
	return created, skipped, nil
}
