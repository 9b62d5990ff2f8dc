package auth

import (
	"context"
	"time"

	"blogapi/internal/cache"
)

const revokedRefreshKeyPrefix = "revoked:refresh_token:"

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRefreshTokenRevoked(ctx context.Context, tokenID string) bool
}

// TokenStore keeps a deny-list of refresh token ids in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeRefreshToken marks tokenID revoked until ttl elapses, which should be the token's remaining lifetime.
func (s *TokenStore) RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedRefreshKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRefreshTokenRevoked reports whether tokenID was revoked. Redis failures read as not revoked.
func (s *TokenStore) IsRefreshTokenRevoked(ctx context.Context, tokenID string) bool {
	return s.cache.Exists(ctx, revokedRefreshKeyPrefix+tokenID)
}
