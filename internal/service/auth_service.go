package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the email is unknown so both failure paths cost one bcrypt.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcryptCost)

// AuthService verifies credentials and refresh tokens. Token issuance is left to the caller.
type AuthService interface {
	Signin(ctx context.Context, email, password string) (*model.RequestUser, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RequestUser, error)
	// Signout revokes refreshToken when it is valid. It never fails.
	Signout(ctx context.Context, refreshToken string)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, log *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log.Named("auth"),
	}
}

// HashPassword returns the bcrypt hash stored on model.User.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(b), err
}

func (s *authService) Signin(ctx context.Context, email, password string) (*model.RequestUser, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	hash := dummyHash
	if user != nil {
		hash = []byte(user.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := checkStatus(user.Status); err != nil {
		return nil, err
	}
	return user.ToRequestUser(), nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*model.RequestUser, error) {
	claims, err := s.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}
	if s.tokenStore.IsRefreshTokenRevoked(ctx, claims.ID) {
		return nil, apperrors.Unauthorized("Refresh token has been revoked")
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized("Unauthorized: User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := checkStatus(user.Status); err != nil {
		return nil, err
	}
	return user.ToRequestUser(), nil
}

func (s *authService) Signout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.jwtService.ParseRefreshToken(refreshToken)
	if err != nil {
		return
	}
	ttl := s.jwtService.RefreshTTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.tokenStore.RevokeRefreshToken(ctx, claims.ID, ttl); err != nil {
		s.log.Warn("revoke refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// checkStatus rejects accounts that may not obtain tokens. Pending accounts may sign in.
func checkStatus(status model.Status) error {
	switch status {
	case model.StatusInactive:
		return apperrors.Forbidden("Your account is deactivated")
	case model.StatusSuspended:
		return apperrors.Forbidden("Your account is suspended")
	}
	return nil
}
