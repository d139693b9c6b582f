package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/castpro/castpro/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for resolved bearer tokens.
	authCachePrefix = "auth:user:"
	// authCacheTTL bounds how long a token → user resolution is reused
	// before the database is consulted again.
	authCacheTTL = 5 * time.Minute
)

// cachedAuthUser is the subset of the user record stored in Redis for
// the auth guard. The password hash is never cached.
type cachedAuthUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetAuthUser retrieves a cached user resolution by cache key.
// Returns nil on a cache miss; a miss is not an error.
func (c *Cache) GetAuthUser(ctx context.Context, cacheKey string) (*model.User, error) {
	key := authCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedAuthUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.User{
		ID:        cached.ID,
		Email:     cached.Email,
		FullName:  cached.FullName,
		IsActive:  cached.IsActive,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, nil
}

// SetAuthUser caches a resolved user for the auth guard.
func (c *Cache) SetAuthUser(ctx context.Context, cacheKey string, user *model.User) error {
	key := authCachePrefix + cacheKey

	cached := cachedAuthUser{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal auth user: %w", err)
	}

	return c.client.Set(ctx, key, data, authCacheTTL).Err()
}

// DeleteAuthUser removes a cached resolution for a single token.
func (c *Cache) DeleteAuthUser(ctx context.Context, cacheKey string) error {
	key := authCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
