package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authSetPrefix is the Redis key prefix for the per-token set of
	// cache keys. Cache keys derive from the plaintext token, which is
	// gone by revocation time, so eviction goes through this set.
	authSetPrefix = "auth:keys:"
	// authCacheTTL is the time-to-live for cached auth contexts.
	authCacheTTL = 5 * time.Minute
)

// CachedAuthContext represents auth context stored in Redis.
type CachedAuthContext struct {
	TokenID       string   `json:"token_id"`
	TokenPrefix   string   `json:"token_prefix"`
	UserID        string   `json:"user_id"`
	Email         string   `json:"email,omitempty"`
	Scopes        []string `json:"scopes"`
	RateLimitTier string   `json:"rate_limit_tier"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	key := authCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		TokenID:       cached.TokenID,
		TokenPrefix:   cached.TokenPrefix,
		UserID:        cached.UserID,
		Email:         cached.Email,
		Scopes:        cached.Scopes,
		RateLimitTier: cached.RateLimitTier,
	}, nil
}

// SetAuthContext caches an auth context.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	key := authCachePrefix + cacheKey

	cached := CachedAuthContext{
		TokenID:       auth.TokenID,
		TokenPrefix:   auth.TokenPrefix,
		UserID:        auth.UserID,
		Email:         auth.Email,
		Scopes:        auth.Scopes,
		RateLimitTier: auth.RateLimitTier,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	setKey := authSetPrefix + auth.TokenID

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, authCacheTTL)
	pipe.SAdd(ctx, setKey, key)
	pipe.Expire(ctx, setKey, authCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache auth context: %w", err)
	}

	return nil
}

// DeleteAuthContext evicts all cached auth contexts for a token.
// Used when a token is revoked so it stops authenticating before the
// cache TTL would have expired it.
func (c *Cache) DeleteAuthContext(ctx context.Context, tokenID string) error {
	setKey := authSetPrefix + tokenID

	keys, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list auth cache keys: %w", err)
	}

	keys = append(keys, setKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete auth cache keys: %w", err)
	}

	return nil
}
