package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"blogapi/docs" // swagger docs

	"blogapi/internal/auth"
	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/db"
	"blogapi/internal/events"
	"blogapi/internal/handler"
	"blogapi/internal/logger"
	"blogapi/internal/middleware"
	"blogapi/internal/repository"
	"blogapi/internal/router"
	"blogapi/internal/service"
)

// @title Blog API
// @version 1.0
// @description Blog backend with JWT authentication, categories and cursor-paginated posts.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.App.LogPath, cfg.App.Name, cfg.App.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, db.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Debug:        cfg.App.Debug,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gormDB) }()

	if cfg.Database.Reset {
		log.Warn("RESET_DB=true detected, dropping all tables")
		err = db.Reset(gormDB)
	} else {
		err = db.Migrate(gormDB)
	}
	if err != nil {
		return err
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = cacheClient.Close() }()

	publisher := newPublisher(cfg.AMQP, log)
	defer func() { _ = publisher.Close() }()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, log)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	postService := service.NewPostService(postRepo, categoryRepo, publisher, log)

	e := echo.New()
	router.Register(e, cfg, log, middleware.NewAuthenticator(jwtService, userService), router.Handlers{
		Auth:     handler.NewAuthHandler(authService, jwtService, cfg.HTTP.CookieSecure, log),
		Category: handler.NewCategoryHandler(categoryService),
		Post:     handler.NewPostHandler(postService),
		User:     handler.NewUserHandler(userService),
		Health:   handler.NewHealthHandler(cfg.App, gormDB, cacheClient),
	})

	docs.SwaggerInfo.Host = cfg.HTTP.SwaggerHost
	log.Info("swagger documentation available", zap.String("path", "/swagger/index.html"))

	addr := ":" + cfg.HTTP.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.App.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// newPublisher dials the broker when one is configured. Post events are
// best effort, so an unreachable broker only disables them.
func newPublisher(cfg config.AMQPConfig, log *zap.Logger) events.Publisher {
	if cfg.URL == "" {
		return events.NopPublisher{}
	}
	p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		log.Warn("amqp unavailable, post events disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	log.Info("publishing post events", zap.String("exchange", cfg.Exchange))
	return p
}
